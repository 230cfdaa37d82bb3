package syn

import (
	"fmt"
	"go/parser"
	"strings"

	"github.com/pontaoski/acctsyn/errors"
	"github.com/pontaoski/acctsyn/types"
)

// valueKind is what a keyword expects after its `=`.
type valueKind int

const (
	noValue valueKind = iota
	identValue
	groupValue
	literalValue
	// optionalIdentValue takes a value only when the keyword is not the
	// last token of the annotation.
	optionalIdentValue
)

var valueTokens = map[valueKind]types.TokenKind{
	identValue:         types.IDENT,
	groupValue:         types.GROUP,
	literalValue:       types.LITERAL,
	optionalIdentValue: types.IDENT,
}

type rentExemption int

const (
	rentExemptUnset rentExemption = iota
	rentExemptEnforce
	rentExemptSkip
)

// constraintSet accumulates the clauses of one annotation.
type constraintSet struct {
	constraints     []Constraint
	isMut           bool
	isSigner        bool
	isInit          bool
	isAssociated    bool
	rentExempt      rentExemption
	payer           *Ident
	space           *Expr
	associatedSeeds []Ident
}

type clause struct {
	value valueKind
	apply func(c *constraintSet, keyword, value types.Token) error
}

var clauses = map[string]clause{
	"init": {noValue, func(c *constraintSet, _, _ types.Token) error {
		c.isInit = true
		c.isMut = true
		// Program owned accounts default to rent exempt.
		if c.rentExempt == rentExemptUnset {
			c.rentExempt = rentExemptEnforce
		}
		return nil
	}},
	"mut": {noValue, func(c *constraintSet, _, _ types.Token) error {
		c.isMut = true
		return nil
	}},
	"signer": {noValue, func(c *constraintSet, _, _ types.Token) error {
		c.isSigner = true
		c.constraints = append(c.constraints, ConstraintSigner{})
		return nil
	}},
	"seeds": {groupValue, func(c *constraintSet, _, v types.Token) error {
		c.constraints = append(c.constraints, ConstraintSeeds{Seeds: v})
		return nil
	}},
	"belongs_to": {identValue, belongsTo},
	"has_one":    {identValue, belongsTo},
	"owner": {identValue, func(c *constraintSet, _, v types.Token) error {
		c.constraints = append(c.constraints, ConstraintOwner{OwnerTarget: tokenIdent(v)})
		return nil
	}},
	"rent_exempt": {optionalIdentValue, func(c *constraintSet, _, v types.Token) error {
		if v.Kind == types.EOF {
			c.rentExempt = rentExemptEnforce
			return nil
		}
		if v.Text != "skip" {
			return errors.InvalidSyntax{
				Reason:   "omit the rent_exempt attribute to enforce rent exemption",
				Location: v.Location,
			}
		}
		c.rentExempt = rentExemptSkip
		return nil
	}},
	"executable": {noValue, func(c *constraintSet, _, _ types.Token) error {
		c.constraints = append(c.constraints, ConstraintExecutable{})
		return nil
	}},
	"state": {identValue, func(c *constraintSet, _, v types.Token) error {
		c.constraints = append(c.constraints, ConstraintState{ProgramTarget: tokenIdent(v)})
		return nil
	}},
	"associated": {identValue, func(c *constraintSet, _, v types.Token) error {
		c.isAssociated = true
		c.isMut = true
		c.constraints = append(c.constraints, ConstraintAssociated{AssociatedTarget: tokenIdent(v)})
		return nil
	}},
	"with": {identValue, func(c *constraintSet, _, v types.Token) error {
		c.associatedSeeds = append(c.associatedSeeds, tokenIdent(v))
		return nil
	}},
	"payer": {identValue, func(c *constraintSet, _, v types.Token) error {
		payer := tokenIdent(v)
		c.payer = &payer
		return nil
	}},
	"space": {literalValue, func(c *constraintSet, _, v types.Token) error {
		space, err := parseExpr(v)
		if err != nil {
			return err
		}
		c.space = &space
		return nil
	}},
}

func belongsTo(c *constraintSet, _, v types.Token) error {
	c.constraints = append(c.constraints, ConstraintBelongsTo{JoinTarget: tokenIdent(v)})
	return nil
}

func tokenIdent(t types.Token) Ident {
	return Ident{Name: t.Text, Location: t.Location}
}

// parseExpr strips every double quote from a literal and parses the rest as
// a Go expression.
func parseExpr(t types.Token) (Expr, error) {
	src := strings.ReplaceAll(t.Text, `"`, "")
	node, err := parser.ParseExpr(src)
	if err != nil {
		return Expr{}, errors.InvalidSyntax{
			Reason:   fmt.Sprintf("%s is not an expression: %v", t.Text, err),
			Location: t.Location,
		}
	}
	return Expr{Source: src, Node: node}, nil
}

type tokenStream struct {
	tokens []types.Token
	next   int
	end    types.Position
}

func (s *tokenStream) done() bool {
	return s.next >= len(s.tokens)
}

// pop returns the next token, or an EOF token located at the end of the
// annotation.
func (s *tokenStream) pop() types.Token {
	if s.done() {
		return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(s.end)}
	}
	t := s.tokens[s.next]
	s.next++
	return t
}

// value consumes the `= value` part of keyword.
func (s *tokenStream) value(keyword types.Token, kind valueKind) (types.Token, error) {
	switch kind {
	case noValue:
		return types.Token{}, nil
	case optionalIdentValue:
		if s.done() {
			return s.pop(), nil
		}
	}

	eq := s.pop()
	if !eq.Is('=') {
		return types.Token{}, errors.ExpectedPunct{
			Keyword:  keyword.Text,
			Expected: '=',
			Got:      eq,
			Location: eq.Location,
		}
	}

	v := s.pop()
	if want := valueTokens[kind]; v.Kind != want {
		return types.Token{}, errors.ExpectedKindGotKind{
			Keyword:  keyword.Text,
			Expected: want,
			Got:      v,
			Location: v.Location,
		}
	}
	return v, nil
}

// parseConstraints walks the top-level tokens of an annotation once, left to
// right. The first malformed token aborts the walk.
func parseConstraints(tokens []types.Token, end types.Position) (*constraintSet, error) {
	c := &constraintSet{}
	s := &tokenStream{tokens: tokens, end: end}

	for !s.done() {
		tok := s.pop()

		switch tok.Kind {
		case types.IDENT:
			cl, ok := clauses[tok.Text]
			if !ok {
				return nil, errors.UnknownKeyword{Name: tok.Text, Location: tok.Location}
			}
			v, err := s.value(tok, cl.value)
			if err != nil {
				return nil, err
			}
			if err := cl.apply(c, tok, v); err != nil {
				return nil, err
			}
		case types.PUNCT:
			if !tok.Is(',') {
				return nil, errors.ExpectedPunct{Expected: ',', Got: tok, Location: tok.Location}
			}
		case types.LITERAL:
			expr, err := parseExpr(tok)
			if err != nil {
				return nil, err
			}
			c.constraints = append(c.constraints, ConstraintLiteral{Expr: expr})
		default:
			return nil, errors.InvalidSyntax{
				Reason:   fmt.Sprintf("unexpected %s", tok.Describe()),
				Location: tok.Location,
			}
		}
	}

	c.normalize()
	return c, nil
}

// normalize applies the cross-clause rules once every clause has been read:
// associated cancels init, and a decided rent exemption becomes a trailing
// constraint.
func (c *constraintSet) normalize() {
	if c.isAssociated {
		c.isInit = false
	}

	switch c.rentExempt {
	case rentExemptEnforce:
		c.constraints = append(c.constraints, RentExemptEnforce)
	case rentExemptSkip:
		c.constraints = append(c.constraints, RentExemptSkip)
	}
}
