package main

import (
	"go/token"
	"os"
	"path/filepath"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/idl"
	"github.com/pontaoski/acctsyn/syn"
)

func parseSources(dirs []string) ([]*syn.AccountsStruct, error) {
	fset := token.NewFileSet()

	var structs []*syn.AccountsStruct
	for _, dir := range dirs {
		parsed, err := syn.ParseDir(fset, dir)
		if err != nil {
			return nil, err
		}
		structs = append(structs, parsed...)
	}

	return structs, nil
}

func parseFiles(files []string) ([]*syn.AccountsStruct, error) {
	fset := token.NewFileSet()

	var structs []*syn.AccountsStruct
	for _, file := range files {
		parsed, err := syn.ParseFile(fset, file, nil)
		if err != nil {
			return nil, err
		}
		structs = append(structs, parsed...)
	}

	return structs, nil
}

func buildIDL(m acctsynModule) ([]byte, error) {
	structs, err := parseSources(m.Sources)
	if err != nil {
		return nil, err
	}

	doc, err := idl.Build(m.Package, structs)
	if err != nil {
		return nil, err
	}
	return doc.Marshal()
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return tracerr.Wrap(err)
	}
	return tracerr.Wrap(os.WriteFile(path, data, 0644))
}

// fieldDump is the printable form of a field: go/ast nodes are replaced by
// their source text.
type fieldDump struct {
	Name            string
	Ty              syn.Ty
	Symbol          string
	Constraints     []string
	IsMut           bool
	IsSigner        bool
	IsInit          bool
	Payer           string
	Space           string
	AssociatedSeeds []string
}

type structDump struct {
	Name   string
	Fields []fieldDump
}

func dumpStruct(st *syn.AccountsStruct) structDump {
	out := structDump{Name: st.Ident.Name}

	for _, f := range st.Fields {
		d := fieldDump{Name: syn.FieldIdent(f).Name}
		for _, c := range syn.FieldConstraints(f) {
			d.Constraints = append(d.Constraints, idl.Describe(c))
		}

		switch f := f.(type) {
		case *syn.Field:
			d.Ty = f.Ty
			d.IsMut = f.IsMut
			d.IsSigner = f.IsSigner
			d.IsInit = f.IsInit
			if f.Payer != nil {
				d.Payer = f.Payer.Name
			}
			if f.Space != nil {
				d.Space = f.Space.Source
			}
			for _, seed := range f.AssociatedSeeds {
				d.AssociatedSeeds = append(d.AssociatedSeeds, seed.Name)
			}
		case *syn.CompositeField:
			d.Symbol = f.Symbol
		}

		out.Fields = append(out.Fields, d)
	}

	return out
}
