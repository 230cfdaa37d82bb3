package syn

import (
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/errors"
)

// parseSource parses src as the body of a Go file; ~ stands for a backquote.
func parseSource(src string) ([]*AccountsStruct, error) {
	fset := token.NewFileSet()
	return ParseFile(fset, "accounts.go", "package program\n\n"+strings.ReplaceAll(src, "~", "`"))
}

func parseOne(t *testing.T, typ, body string) (AccountField, error) {
	t.Helper()
	tag := ""
	if body != "" {
		tag = "~account:" + strconv.Quote(body) + "~"
	}
	src := fmt.Sprintf("%s\ntype Ctx[Info any] struct {\n\tAcc %s %s\n}\n", Directive, typ, tag)
	structs, err := parseSource(src)
	if err != nil {
		return nil, err
	}
	require.Len(t, structs, 1)
	require.Len(t, structs[0].Fields, 1)
	return structs[0].Fields[0], nil
}

func leaf(t *testing.T, typ, body string) *Field {
	t.Helper()
	f, err := parseOne(t, typ, body)
	require.NoError(t, err)
	field, ok := f.(*Field)
	require.True(t, ok, "got %T", f)
	return field
}

const initializeSrc = `
// Initialize creates a vault.
//
//acctsyn:accounts
type Initialize[Info any] struct {
	Vault     ProgramAccount[Info, Vault] ~account:"init, payer = authority, space = \"8 + 32\""~
	Authority AccountInfo[Info]           ~account:"signer" json:"authority"~
	Clock     Sysvar[Info, Clock]
	Deposit   Deposit[Info]               ~account:"signer"~
	Mint, Market CpiAccount[Info, Mint]   ~account:"mut"~
}

type helper struct {
	embedded
}
`

func TestParseStruct(t *testing.T) {
	structs, err := parseSource(initializeSrc)
	require.NoError(t, err)
	require.Len(t, structs, 1)

	st := structs[0]
	require.Equal(t, "Initialize", st.Ident.Name)
	require.Equal(t, "Initialize", st.Spec.Name.Name)

	var names []string
	for _, f := range st.Fields {
		names = append(names, FieldIdent(f).Name)
	}
	require.Equal(t, []string{"Vault", "Authority", "Clock", "Deposit", "Mint", "Market"}, names)

	vault := st.Fields[0].(*Field)
	require.Equal(t, ProgramAccountTy{AccountIdent: Ident{Name: "Vault", Location: vault.Ty.(ProgramAccountTy).AccountIdent.Location}}, vault.Ty)
	require.True(t, vault.IsInit)
	require.True(t, vault.IsMut)
	require.Equal(t, "authority", vault.Payer.Name)
	require.Equal(t, "8 + 32", vault.Space.Source)
	require.Equal(t, []Constraint{RentExemptEnforce}, vault.Constraints)

	authority := st.Fields[1].(*Field)
	require.Equal(t, AccountInfoTy{}, authority.Ty)
	require.True(t, authority.IsSigner)
	require.Equal(t, []Constraint{ConstraintSigner{}}, authority.Constraints)

	clock := st.Fields[2].(*Field)
	require.Equal(t, SysvarTy{Kind: Clock}, clock.Ty)
	require.Empty(t, clock.Constraints)

	deposit := st.Fields[3].(*CompositeField)
	require.Equal(t, "Deposit", deposit.Symbol)
	require.Equal(t, []Constraint{ConstraintSigner{}}, deposit.Constraints)
	require.IsType(t, &ast.IndexExpr{}, deposit.RawType)

	mint, market := st.Fields[4].(*Field), st.Fields[5].(*Field)
	require.True(t, mint.IsMut)
	require.True(t, market.IsMut)
	require.Equal(t, "Mint", market.Ty.(CpiAccountTy).AccountIdent.Name)
}

func TestFieldWithoutAnnotation(t *testing.T) {
	f := leaf(t, "ProgramAccount[Info, Vault]", "")
	require.Empty(t, f.Constraints)
	require.False(t, f.IsMut)
	require.False(t, f.IsSigner)
	require.False(t, f.IsInit)
	require.Nil(t, f.Payer)
	require.Nil(t, f.Space)
	require.Empty(t, f.AssociatedSeeds)

	c, err := parseOne(t, "Nested[Info]", "")
	require.NoError(t, err)
	composite := c.(*CompositeField)
	require.Equal(t, "Nested", composite.Symbol)
	require.Empty(t, composite.Constraints)
}

func TestWrapperTypes(t *testing.T) {
	tests := []struct {
		typ  string
		want func(Ident) Ty
	}{
		{"ProgramState[Info, Counter]", func(i Ident) Ty { return ProgramStateTy{AccountIdent: i} }},
		{"CpiState[Info, Counter]", func(i Ident) Ty { return CpiStateTy{AccountIdent: i} }},
		{"ProgramAccount[Info, Counter]", func(i Ident) Ty { return ProgramAccountTy{AccountIdent: i} }},
		{"CpiAccount[Info, Counter]", func(i Ident) Ty { return CpiAccountTy{AccountIdent: i} }},
		{"Loader[Info, Counter]", func(i Ident) Ty { return LoaderTy{AccountIdent: i} }},
		{"ProgramAccount[Info, Counter[T]]", func(i Ident) Ty { return ProgramAccountTy{AccountIdent: i} }},
	}

	for _, test := range tests {
		f := leaf(t, test.typ, "")
		if diff := cmp.Diff(test.want(Ident{Name: "Counter"}), f.Ty, astOpts); diff != "" {
			t.Errorf("%s: type mismatch (-want +got):\n%s", test.typ, diff)
		}
	}

	require.Equal(t, AccountInfoTy{}, leaf(t, "AccountInfo", "").Ty)
	require.Equal(t, AccountInfoTy{}, leaf(t, "AccountInfo[Info]", "").Ty)
}

func TestSysvars(t *testing.T) {
	for name, kind := range sysvars {
		f := leaf(t, "Sysvar[Info, "+name+"]", "")
		require.Equal(t, SysvarTy{Kind: kind}, f.Ty)
		require.Equal(t, name, kind.String())
	}

	_, err := parseOne(t, "Sysvar[Info, Weather]", "")
	var invalid errors.InvalidAccount
	require.ErrorAs(t, tracerr.Unwrap(err), &invalid)
	require.Equal(t, "Sysvar", invalid.Wrapper)
	require.Contains(t, err.Error(), "invalid Sysvar")
}

func TestWrongArity(t *testing.T) {
	tests := []struct {
		typ     string
		wrapper string
	}{
		{"ProgramAccount[Info, Vault, Extra]", "ProgramAccount"},
		{"Sysvar[Info, Clock, Extra]", "Sysvar"},
		{"CpiState[Info]", "CpiState"},
		{"Loader", "Loader"},
		{"ProgramState[Info, *Counter]", "ProgramState"},
	}

	for _, test := range tests {
		_, err := parseOne(t, test.typ, "")
		var invalid errors.InvalidAccount
		require.ErrorAs(t, tracerr.Unwrap(err), &invalid, test.typ)
		require.Equal(t, test.wrapper, invalid.Wrapper, test.typ)
		require.Contains(t, err.Error(), "invalid "+test.wrapper, test.typ)
	}
}

func TestQualifiedPaths(t *testing.T) {
	for _, typ := range []string{
		"anchor.ProgramAccount[Info, Vault]",
		"ProgramAccount[Info, state.Vault]",
		"Sysvar[Info, sysvar.Clock]",
		"other.Nested[Info]",
	} {
		_, err := parseOne(t, typ, "")
		require.ErrorAs(t, tracerr.Unwrap(err), &errors.UnsupportedPath{}, typ)
	}
}

func TestUnnamedFieldType(t *testing.T) {
	_, err := parseOne(t, "*ProgramAccount[Info, Vault]", "")
	var invalid errors.InvalidAccount
	require.ErrorAs(t, tracerr.Unwrap(err), &invalid)
	require.Empty(t, invalid.Wrapper)
}

func TestDuplicateAttribute(t *testing.T) {
	src := Directive + `
type Ctx struct {
	Acc AccountInfo ~account:"mut" account:"signer"~
}`
	structs, err := parseSource(src)
	require.Nil(t, structs)
	require.ErrorAs(t, tracerr.Unwrap(err), &errors.DuplicateAttribute{})
	require.Contains(t, err.Error(), "specify one account attribute")

	var field errors.FieldError
	require.ErrorAs(t, tracerr.Unwrap(err), &field)
	require.Equal(t, "Ctx", field.Struct)
	require.Equal(t, "Acc", field.Field)
}

func TestInvalidInput(t *testing.T) {
	for _, src := range []string{
		Directive + "\ntype Ctx struct {\n\tAccountInfo\n}",
		Directive + "\ntype Ctx int",
	} {
		_, err := parseSource(src)
		require.ErrorAs(t, tracerr.Unwrap(err), &errors.InvalidInput{}, src)
		require.Contains(t, err.Error(), "invalid input")
	}
}

func TestFirstErrorAbortsStruct(t *testing.T) {
	src := Directive + `
type Ctx struct {
	A AccountInfo ~account:"mut"~
	B AccountInfo ~account:"foo"~
	C AccountInfo ~account:"bar"~
}`
	structs, err := parseSource(src)
	require.Nil(t, structs)

	var field errors.FieldError
	require.ErrorAs(t, tracerr.Unwrap(err), &field)
	require.Equal(t, "B", field.Field)

	var unknown errors.UnknownKeyword
	require.ErrorAs(t, tracerr.Unwrap(err), &unknown)
	require.Equal(t, "foo", unknown.Name)
}

func TestAnnotationErrorsOnCompositeFields(t *testing.T) {
	_, err := parseOne(t, "Nested[Info]", "signer, foo")
	require.ErrorAs(t, tracerr.Unwrap(err), &errors.UnknownKeyword{})
}

func TestAnnotationLocation(t *testing.T) {
	src := Directive + `
type Ctx struct {
	Acc AccountInfo ~json:"acc" account:"mut, foo"~
}`
	_, err := parseSource(src)
	var unknown errors.UnknownKeyword
	require.ErrorAs(t, tracerr.Unwrap(err), &unknown)
	require.Equal(t, "accounts.go", unknown.Location.From.Filename)
	require.Equal(t, 5, unknown.Location.From.Line)
	// The tag opens at column 18; "foo" starts 25 bytes into it.
	require.Equal(t, 18+1+25, unknown.Location.From.Column)
}

func TestLookupAll(t *testing.T) {
	values, err := lookupAll(`json:"a" account:"mut" account:"signer"`, "account")
	require.NoError(t, err)
	require.Equal(t, []tagValue{{value: "mut", offset: 18}, {value: "signer", offset: 32}}, values)

	values, err = lookupAll(`json:"a"`, "account")
	require.NoError(t, err)
	require.Empty(t, values)

	values, err = lookupAll(`account:""`, "account")
	require.NoError(t, err)
	require.Equal(t, []tagValue{{value: "", offset: 9}}, values)

	for _, tag := range []string{
		`account: "signer"`,
		`account:signer`,
		`json:x account:"signer"`,
		`account:"signer`,
		`account:"\q"`,
		`account`,
	} {
		_, err := lookupAll(tag, "account")
		require.Error(t, err, tag)
	}
}

func TestMalformedTag(t *testing.T) {
	for _, tag := range []string{
		`account: "signer"`,
		`account:signer`,
		`json:x account:"signer"`,
	} {
		src := Directive + "\ntype Ctx struct {\n\tAcc AccountInfo ~" + tag + "~\n}\n"
		structs, err := parseSource(src)
		require.Nil(t, structs, tag)

		var syntax errors.InvalidSyntax
		require.ErrorAs(t, tracerr.Unwrap(err), &syntax, tag)
		require.Contains(t, syntax.Reason, "malformed struct tag", tag)
		require.Equal(t, 5, syntax.Location.From.Line, tag)
		require.Equal(t, 18, syntax.Location.From.Column, tag)

		var field errors.FieldError
		require.ErrorAs(t, tracerr.Unwrap(err), &field, tag)
		require.Equal(t, "Acc", field.Field, tag)
	}
}

func TestInterpretedTagLocation(t *testing.T) {
	src := Directive + `
type Ctx struct {
	Acc AccountInfo "account:\"mut, foo\""
}`
	_, err := parseSource(src)
	var unknown errors.UnknownKeyword
	require.ErrorAs(t, tracerr.Unwrap(err), &unknown)
	// The tag opens at column 18; "foo" is 16 bytes into it as written.
	require.Equal(t, 18+16, unknown.Location.From.Column)
}

func TestSourceOffset(t *testing.T) {
	require.Equal(t, 9, sourceOffset("`account:\"mut\"`", 9))
	require.Equal(t, 10, sourceOffset(`"account:\"mut\""`, 9))
	// é is two bytes decoded and six as written.
	require.Equal(t, 23, sourceOffset(`"a:\"\u00e9\" account:\"x\""`, 16))
}

func TestParseNilFieldList(t *testing.T) {
	spec := &ast.TypeSpec{
		Name: ast.NewIdent("Ctx"),
		Type: &ast.StructType{},
	}
	_, err := Parse(token.NewFileSet(), spec)
	var invalid errors.InvalidInput
	require.ErrorAs(t, tracerr.Unwrap(err), &invalid)
	require.Equal(t, "Ctx", invalid.Struct)
}

func TestDirectiveSelection(t *testing.T) {
	src := `
type (
	// Skipped is not an accounts struct.
	Skipped struct{ A int }

	//acctsyn:accounts
	Grouped struct {
		Payer AccountInfo ~account:"signer"~
	}
)

//acctsyn:accounts
type Empty struct{}

func helper() {}
`
	structs, err := parseSource(src)
	require.NoError(t, err)
	require.Len(t, structs, 2)
	require.Equal(t, "Grouped", structs[0].Ident.Name)
	require.Equal(t, "Empty", structs[1].Ident.Name)
	require.Empty(t, structs[1].Fields)
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package program\n\n"+strings.ReplaceAll(src, "~", "`")), 0644))
	}
	write("b.go", Directive+"\ntype Second struct {\n\tA AccountInfo\n}\n")
	write("a.go", Directive+"\ntype First struct {\n\tA AccountInfo\n}\n")
	write("a_test.go", Directive+"\ntype Ignored struct {\n\tA AccountInfo ~account:\"foo\"~\n}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not go"), 0644))

	structs, err := ParseDir(token.NewFileSet(), dir)
	require.NoError(t, err)
	require.Len(t, structs, 2)
	require.Equal(t, "First", structs[0].Ident.Name)
	require.Equal(t, "Second", structs[1].Ident.Name)
}

func TestParseFileSyntaxError(t *testing.T) {
	_, err := parseSource("type struct {")
	require.Error(t, err)
}
