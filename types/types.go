package types

import (
	"fmt"
	"strings"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	IDENT
	PUNCT
	LITERAL
	GROUP
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:     "EOF",
		ILLEGAL: "ILLEGAL",
		IDENT:   "IDENT",
		PUNCT:   "PUNCT",
		LITERAL: "LITERAL",
		GROUP:   "GROUP",
	}
	return data[t]
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Delimiter is the bracket pair enclosing a GROUP token.
type Delimiter rune

const (
	NoDelimiter Delimiter = 0
	Parenthesis Delimiter = '('
	Bracket     Delimiter = '['
	Brace       Delimiter = '{'
)

// Close returns the rune that terminates a group opened by d.
func (d Delimiter) Close() rune {
	switch d {
	case Parenthesis:
		return ')'
	case Bracket:
		return ']'
	case Brace:
		return '}'
	}
	return 0
}

// Token is a token tree. Text is always the verbatim source of the token,
// including quotes for literals and delimiters for groups.
type Token struct {
	Kind     TokenKind
	Location Span
	Text     string

	Delimiter Delimiter
	Children  []Token
}

// Is reports whether t is the punctuation rune p.
func (t Token) Is(p rune) bool {
	return t.Kind == PUNCT && t.Text == string(p)
}

// Describe renders the token for error messages.
func (t Token) Describe() string {
	if t.Kind == EOF {
		return "end of annotation"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Inner returns the verbatim source between a group's delimiters.
func (t Token) Inner() string {
	if t.Kind != GROUP || len(t.Text) < 2 {
		return ""
	}
	return strings.TrimSpace(t.Text[1 : len(t.Text)-1])
}
