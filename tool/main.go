package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

// ADT is a list of sealed interfaces:
//
//	sealed Ty {
//		ProgramAccountTy
//		*Field
//	}
type ADT struct {
	Decls []*Sealed `@@*`
}

type Sealed struct {
	Name     string     `"sealed" @Ident "{"`
	Variants []*Variant `@@* "}"`
}

type Variant struct {
	Pointer bool   `@"*"?`
	Name    string `@Ident`
}

func marker(name string) string {
	return "is" + name
}

func Generate(pkgname string, file *ADT) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by sealgen. DO NOT EDIT.")

	for _, decl := range file.Decls {
		f.Type().Id(decl.Name).Interface(
			Id(marker(decl.Name)).Params(),
		)

		for _, v := range decl.Variants {
			recv := Id(v.Name)
			if v.Pointer {
				recv = Op("*").Id(v.Name)
			}
			f.Func().Params(recv).Id(marker(decl.Name)).Params().Block()
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: sealgen <input.adt> <output.go> <package>")
		os.Exit(2)
	}

	parser := participle.MustBuild(&ADT{})

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	file := ADT{}
	err = parser.ParseBytes(inData, &file)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(Generate(pkgname, &file)), 0644)
	if err != nil {
		panic(err)
	}
}
