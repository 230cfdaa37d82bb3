package main

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle"
)

func TestGenerate(t *testing.T) {
	parser := participle.MustBuild(&ADT{})

	file := ADT{}
	err := parser.ParseString(`
sealed Ty {
	SysvarTy
	*Field
}
`, &file)
	if err != nil {
		t.Fatal(err)
	}

	if len(file.Decls) != 1 || len(file.Decls[0].Variants) != 2 {
		t.Fatalf("unexpected parse: %+v", file)
	}
	if !file.Decls[0].Variants[1].Pointer {
		t.Fatalf("expected *Field to be a pointer variant")
	}

	out := Generate("syn", &file)
	for _, want := range []string{
		"// Code generated by sealgen. DO NOT EDIT.",
		"package syn",
		"type Ty interface {\n\tisTy()\n}",
		"func (SysvarTy) isTy() {}",
		"func (*Field) isTy() {}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}
