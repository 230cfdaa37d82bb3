package errors

import (
	"fmt"

	"github.com/pontaoski/acctsyn/types"
)

type ExpectedKindGotKind struct {
	Keyword  string
	Expected types.TokenKind
	Got      types.Token
	Location types.Span
}

func (e ExpectedKindGotKind) Error() string {
	return fmt.Sprintf("invalid syntax: %s expects a %s, got %s. %s", e.Keyword, e.Expected, e.Got.Describe(), e.Location)
}

type ExpectedPunct struct {
	Keyword  string
	Expected rune
	Got      types.Token
	Location types.Span
}

func (e ExpectedPunct) Error() string {
	if e.Keyword == "" {
		return fmt.Sprintf("invalid syntax: expected %q between clauses, got %s. %s", e.Expected, e.Got.Describe(), e.Location)
	}
	return fmt.Sprintf("invalid syntax: expected %q after %s, got %s. %s", e.Expected, e.Keyword, e.Got.Describe(), e.Location)
}

type UnknownKeyword struct {
	Name     string
	Location types.Span
}

func (e UnknownKeyword) Error() string {
	return fmt.Sprintf("invalid syntax: unknown keyword %s. %s", e.Name, e.Location)
}

type InvalidSyntax struct {
	Reason   string
	Location types.Span
}

func (e InvalidSyntax) Error() string {
	return fmt.Sprintf("invalid syntax: %s. %s", e.Reason, e.Location)
}

// InvalidAccount reports a field type the resolver of Wrapper rejected.
type InvalidAccount struct {
	Wrapper  string
	Reason   string
	Location types.Span
}

func (e InvalidAccount) Error() string {
	if e.Wrapper == "" {
		return fmt.Sprintf("invalid account syntax: %s. %s", e.Reason, e.Location)
	}
	return fmt.Sprintf("invalid %s: %s. %s", e.Wrapper, e.Reason, e.Location)
}

type DuplicateAttribute struct {
	Count    int
	Location types.Span
}

func (e DuplicateAttribute) Error() string {
	return fmt.Sprintf("invalid syntax: please specify one account attribute, found %d. %s", e.Count, e.Location)
}

type InvalidInput struct {
	Struct   string
	Reason   string
	Location types.Span
}

func (e InvalidInput) Error() string {
	return fmt.Sprintf("invalid input: %s %s. %s", e.Struct, e.Reason, e.Location)
}

// UnsupportedPath is returned for qualified names such as pkg.Type; only
// single identifiers are accepted for field types and type arguments.
type UnsupportedPath struct {
	Path     string
	Location types.Span
}

func (e UnsupportedPath) Error() string {
	return fmt.Sprintf("unsupported path %s: only single-segment names are allowed. %s", e.Path, e.Location)
}

type UnterminatedGroup struct {
	Open     rune
	Got      string
	Location types.Span
}

func (e UnterminatedGroup) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("unterminated group %q. %s", e.Open, e.Location)
	}
	return fmt.Sprintf("group %q closed by %q. %s", e.Open, e.Got, e.Location)
}

type UnterminatedLiteral struct {
	Text     string
	Location types.Span
}

func (e UnterminatedLiteral) Error() string {
	return fmt.Sprintf("unterminated literal %s. %s", e.Text, e.Location)
}

// FieldError attaches the struct and field being parsed to a syntax error.
type FieldError struct {
	Struct string
	Field  string
	Err    error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Struct, e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}
