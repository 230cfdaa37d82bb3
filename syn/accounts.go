package syn

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"
	"strconv"
	"unicode/utf8"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/errors"
	"github.com/pontaoski/acctsyn/lexer"
	"github.com/pontaoski/acctsyn/types"
)

// AttributeKey is the struct tag key holding a field's constraints.
const AttributeKey = "account"

// Parse builds the AST of one accounts struct. Only structs made of named
// fields are accepted, and parsing stops at the first malformed field.
func Parse(fset *token.FileSet, spec *ast.TypeSpec) (*AccountsStruct, error) {
	name := identOf(fset, spec.Name)

	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, tracerr.Wrap(errors.InvalidInput{
			Struct:   name.Name,
			Reason:   "is not a struct type",
			Location: span(fset, spec),
		})
	}

	if st.Fields == nil {
		return nil, tracerr.Wrap(errors.InvalidInput{
			Struct:   name.Name,
			Reason:   "has no field list",
			Location: name.Location,
		})
	}

	var fields []AccountField
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, tracerr.Wrap(errors.InvalidInput{
				Struct:   name.Name,
				Reason:   fmt.Sprintf("has unnamed field %s", gotypes.ExprString(f.Type)),
				Location: span(fset, f),
			})
		}

		for _, n := range f.Names {
			field, err := parseAccountField(fset, n, f)
			if err != nil {
				return nil, tracerr.Wrap(errors.FieldError{Struct: name.Name, Field: n.Name, Err: err})
			}
			fields = append(fields, field)
		}
	}

	return &AccountsStruct{
		Ident:  name,
		Spec:   spec,
		Fields: fields,
	}, nil
}

func parseAccountField(fset *token.FileSet, name *ast.Ident, f *ast.Field) (AccountField, error) {
	attr, err := parseAccountAttr(fset, f)
	if err != nil {
		return nil, err
	}
	return parseField(fset, name, f, attr)
}

// attribute is the body of an account tag and where it starts in the file.
type attribute struct {
	body string
	base types.Position
}

func (a *attribute) end() types.Position {
	end := a.base
	end.Column += utf8.RuneCountInString(a.body) + 1
	return end
}

func parseAccountAttr(fset *token.FileSet, f *ast.Field) (*attribute, error) {
	if f.Tag == nil {
		return nil, nil
	}

	tag, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return nil, errors.InvalidSyntax{
			Reason:   fmt.Sprintf("malformed struct tag %s", f.Tag.Value),
			Location: span(fset, f.Tag),
		}
	}

	values, err := lookupAll(tag, AttributeKey)
	if err != nil {
		return nil, errors.InvalidSyntax{
			Reason:   fmt.Sprintf("malformed struct tag %s: %v", f.Tag.Value, err),
			Location: span(fset, f.Tag),
		}
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		base := position(fset, f.Tag.Pos())
		base.Column += sourceOffset(f.Tag.Value, values[0].offset)
		return &attribute{body: values[0].value, base: base}, nil
	}

	return nil, errors.DuplicateAttribute{
		Count:    len(values),
		Location: span(fset, f.Tag),
	}
}

func parseField(fset *token.FileSet, name *ast.Ident, f *ast.Field, attr *attribute) (AccountField, error) {
	ident := identOf(fset, name)

	constraints := &constraintSet{}
	if attr != nil {
		tokens, err := lexer.Tokenize(attr.body, attr.base)
		if err != nil {
			return nil, err
		}
		constraints, err = parseConstraints(tokens, attr.end())
		if err != nil {
			return nil, err
		}
	}

	symbol, err := identString(fset, f.Type)
	if err != nil {
		return nil, err
	}

	if !isFieldPrimitive(symbol) {
		return &CompositeField{
			Ident:       ident,
			Symbol:      symbol,
			Constraints: constraints.constraints,
			RawType:     f.Type,
		}, nil
	}

	ty, err := parseTy(fset, symbol, f.Type)
	if err != nil {
		return nil, err
	}

	return &Field{
		Ident:           ident,
		Ty:              ty,
		Constraints:     constraints.constraints,
		IsMut:           constraints.isMut,
		IsSigner:        constraints.isSigner,
		IsInit:          constraints.isInit,
		Payer:           constraints.payer,
		Space:           constraints.space,
		AssociatedSeeds: constraints.associatedSeeds,
	}, nil
}

type tagValue struct {
	value  string
	offset int
}

// lookupAll returns every value stored under key in a conventional struct
// tag, with the byte offset of each value's first character. Unlike
// reflect.StructTag.Lookup it does not stop at the first match, and a tag
// that does not follow the key:"value" convention is an error.
func lookupAll(tag, key string) ([]tagValue, error) {
	var values []tagValue
	offset := 0

	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		offset += i
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return nil, fmt.Errorf("expected key:\"value\" at offset %d", offset)
		}
		name := tag[:i]
		tag = tag[i+1:]
		offset += i + 1

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			return nil, fmt.Errorf("unterminated value of %s", name)
		}
		quoted := tag[:i+1]
		tag = tag[i+1:]

		if name == key {
			value, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("value of %s: %v", name, err)
			}
			values = append(values, tagValue{value: value, offset: offset + 1})
		}
		offset += i + 1
	}

	return values, nil
}

// sourceOffset maps offset n in the decoded tag to an offset in the tag
// literal as written, measured from the character after the opening quote.
// Offsets inside the annotation body still count decoded runes.
func sourceOffset(lit string, n int) int {
	if lit == "" || lit[0] != '"' {
		return n
	}

	i, decoded := 1, 0
	for decoded < n && i < len(lit)-1 {
		value, multibyte, tail, err := strconv.UnquoteChar(lit[i:], '"')
		if err != nil {
			break
		}
		i = len(lit) - len(tail)
		if multibyte {
			decoded += utf8.RuneLen(value)
		} else {
			decoded++
		}
	}

	return i - 1
}

func position(fset *token.FileSet, pos token.Pos) types.Position {
	p := fset.Position(pos)
	return types.Position{Line: p.Line, Column: p.Column, Filename: p.Filename}
}

func span(fset *token.FileSet, n ast.Node) types.Span {
	return types.Span{From: position(fset, n.Pos()), To: position(fset, n.End())}
}

func identOf(fset *token.FileSet, id *ast.Ident) Ident {
	return Ident{Name: id.Name, Location: span(fset, id)}
}
