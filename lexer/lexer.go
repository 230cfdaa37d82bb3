// Package lexer splits the body of an account annotation into token trees.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pontaoski/acctsyn/errors"
	"github.com/pontaoski/acctsyn/types"
)

type Lexer struct {
	pos      types.Position
	prev     types.Position
	reader   *bufio.Reader
	consumed []rune
}

// NewLexer returns a lexer whose first rune is reported one column after base.
func NewLexer(reader io.Reader, base types.Position) *Lexer {
	if base.Line == 0 {
		base.Line = 1
	}
	return &Lexer{
		pos:    base,
		reader: bufio.NewReader(reader),
	}
}

// Tokenize lexes src to the end and returns its top-level token trees.
func Tokenize(src string, base types.Position) ([]types.Token, error) {
	l := NewLexer(strings.NewReader(src), base)

	var tokens []types.Token
	for {
		tok, err := l.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Kind == types.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) newline() {
	l.pos.Line++
	l.pos.Column = 0
}

func (l *Lexer) readRune() (rune, error) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}

	l.prev = l.pos
	if r == '\n' {
		l.newline()
	} else {
		l.pos.Column++
	}
	l.consumed = append(l.consumed, r)

	return r, nil
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos = l.prev
	l.consumed = l.consumed[:len(l.consumed)-1]
}

func (l *Lexer) kinded(t types.TokenKind, text string) types.Token {
	return types.Token{
		Kind:     t,
		Location: types.SingleCharSpan(l.pos),
		Text:     text,
	}
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

// numberChars accepts the runes of one number literal. A sign belongs to the
// number only right after an exponent marker: e or E, or p or P in hex.
func numberChars() func(rune) bool {
	var lit []rune
	return func(r rune) bool {
		ok := r == '.' || otherChar(r)
		if (r == '+' || r == '-') && len(lit) > 0 {
			hex := len(lit) >= 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X')
			switch lit[len(lit)-1] {
			case 'e', 'E':
				ok = !hex
			case 'p', 'P':
				ok = hex
			}
		}
		if ok {
			lit = append(lit, r)
		}
		return ok
	}
}

func (l *Lexer) lexRun(kind types.TokenKind, accept func(rune) bool) (types.Token, error) {
	var lit []rune

	r, err := l.readRune()
	from := l.pos
	to := l.pos

	for {
		if err != nil {
			if err == io.EOF {
				return types.Token{Kind: kind, Location: types.Span{From: from, To: to}, Text: string(lit)}, nil
			}
			return types.Token{}, err
		}

		if !accept(r) {
			l.backup()
			return types.Token{Kind: kind, Location: types.Span{From: from, To: to}, Text: string(lit)}, nil
		}
		lit = append(lit, r)
		to = l.pos

		r, err = l.readRune()
	}
}

func (l *Lexer) lexLiteral() (types.Token, error) {
	start := len(l.consumed)
	quote, err := l.readRune()
	if err != nil {
		return types.Token{}, err
	}
	from := l.pos

	escaped := false
	for {
		r, err := l.readRune()
		if err != nil && err != io.EOF {
			return types.Token{}, err
		}
		if err == io.EOF || r == '\n' {
			return types.Token{}, errors.UnterminatedLiteral{
				Text:     string(l.consumed[start:]),
				Location: types.Span{From: from, To: l.pos},
			}
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == quote:
			return types.Token{
				Kind:     types.LITERAL,
				Location: types.Span{From: from, To: l.pos},
				Text:     string(l.consumed[start:]),
			}, nil
		}
	}
}

func (l *Lexer) lexGroup(open types.Delimiter, start int, from types.Position) (types.Token, error) {
	var children []types.Token

	for {
		tok, closer, err := l.lex()
		if err != nil {
			return types.Token{}, err
		}
		if tok.Kind == types.EOF {
			return types.Token{}, errors.UnterminatedGroup{
				Open:     rune(open),
				Location: types.Span{From: from, To: l.pos},
			}
		}

		if closer != 0 {
			if closer != open.Close() {
				return types.Token{}, errors.UnterminatedGroup{
					Open:     rune(open),
					Got:      string(closer),
					Location: types.Span{From: from, To: l.pos},
				}
			}
			return types.Token{
				Kind:      types.GROUP,
				Location:  types.Span{From: from, To: l.pos},
				Text:      string(l.consumed[start:]),
				Delimiter: open,
				Children:  children,
			}, nil
		}

		children = append(children, tok)
	}
}

// lex returns the next token tree. A closing delimiter is reported through
// closer so that the enclosing group can match it.
func (l *Lexer) lex() (tok types.Token, closer rune, err error) {
	for {
		start := len(l.consumed)
		r, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				return l.kinded(types.EOF, ""), 0, nil
			}
			return types.Token{}, 0, err
		}

		switch {
		case unicode.IsSpace(r):
			continue
		case firstChar(r):
			l.backup()
			tok, err := l.lexRun(types.IDENT, otherChar)
			return tok, 0, err
		case unicode.IsDigit(r):
			l.backup()
			tok, err := l.lexRun(types.LITERAL, numberChars())
			return tok, 0, err
		case r == '"' || r == '\'':
			l.backup()
			tok, err := l.lexLiteral()
			return tok, 0, err
		case r == '(' || r == '[' || r == '{':
			tok, err := l.lexGroup(types.Delimiter(r), start, l.pos)
			return tok, 0, err
		case r == ')' || r == ']' || r == '}':
			return l.kinded(types.PUNCT, string(r)), r, nil
		}

		return l.kinded(types.PUNCT, string(r)), 0, nil
	}
}

// Lex returns the next top-level token tree, or an EOF token once the input
// is exhausted.
func (l *Lexer) Lex() (types.Token, error) {
	tok, closer, err := l.lex()
	if err != nil {
		return types.Token{}, err
	}
	if closer != 0 {
		return types.Token{}, errors.InvalidSyntax{
			Reason:   fmt.Sprintf("unexpected %q", closer),
			Location: tok.Location,
		}
	}
	return tok, nil
}
