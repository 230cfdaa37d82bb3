package syn

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ztrue/tracerr"
)

// Directive marks a struct declaration as an accounts struct.
const Directive = "//acctsyn:accounts"

// ParseFile parses a Go source file and returns its accounts structs in
// declaration order. src follows the conventions of go/parser.ParseFile.
func ParseFile(fset *token.FileSet, filename string, src interface{}) ([]*AccountsStruct, error) {
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	return ParseDecls(fset, f)
}

// ParseDecls returns the accounts structs declared in an already parsed file.
func ParseDecls(fset *token.FileSet, f *ast.File) ([]*AccountsStruct, error) {
	var structs []*AccountsStruct

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		for _, s := range gen.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil && !gen.Lparen.IsValid() {
				doc = gen.Doc
			}
			if !hasDirective(doc) {
				continue
			}

			st, err := Parse(fset, spec)
			if err != nil {
				return nil, err
			}
			structs = append(structs, st)
		}
	}

	return structs, nil
}

// ParseDir parses every non-test Go file of dir, in file name order.
func ParseDir(fset *token.FileSet, dir string) ([]*AccountsStruct, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var structs []*AccountsStruct
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		parsed, err := ParseFile(fset, filepath.Join(dir, name), nil)
		if err != nil {
			return nil, err
		}
		structs = append(structs, parsed...)
	}

	return structs, nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}
