// Package idl derives an interface description of a program's instructions
// from its parsed accounts structs.
package idl

import (
	"fmt"

	"github.com/iancoleman/strcase"
	jsoniter "github.com/json-iterator/go"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/syn"
)

const Version = "0.1.0"

type IDL struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
}

type Instruction struct {
	Name     string        `json:"name"`
	Accounts []AccountItem `json:"accounts"`
}

// AccountItem is an Account or a nested Accounts group.
type AccountItem interface {
	isAccountItem()
}

type Account struct {
	Name        string   `json:"name"`
	IsMut       bool     `json:"isMut"`
	IsSigner    bool     `json:"isSigner"`
	IsInit      bool     `json:"isInit,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
}

type Accounts struct {
	Name        string        `json:"name"`
	Constraints []string      `json:"constraints,omitempty"`
	Accounts    []AccountItem `json:"accounts"`
}

func (Account) isAccountItem()  {}
func (Accounts) isAccountItem() {}

type builder struct {
	structs  map[string]*syn.AccountsStruct
	visiting map[string]bool
}

// Build describes every accounts struct as an instruction. Composite fields
// are expanded with the accounts of the struct they name, which must be
// among structs.
func Build(name string, structs []*syn.AccountsStruct) (*IDL, error) {
	b := builder{
		structs:  make(map[string]*syn.AccountsStruct, len(structs)),
		visiting: map[string]bool{},
	}
	for _, st := range structs {
		if _, ok := b.structs[st.Ident.Name]; ok {
			return nil, tracerr.Errorf("accounts struct %s declared more than once. %s", st.Ident.Name, st.Ident.Location)
		}
		b.structs[st.Ident.Name] = st
	}

	out := &IDL{Version: Version, Name: strcase.ToSnake(name)}
	for _, st := range structs {
		items, err := b.accounts(st)
		if err != nil {
			return nil, err
		}
		out.Instructions = append(out.Instructions, Instruction{
			Name:     strcase.ToLowerCamel(st.Ident.Name),
			Accounts: items,
		})
	}

	return out, nil
}

func (b *builder) accounts(st *syn.AccountsStruct) ([]AccountItem, error) {
	if b.visiting[st.Ident.Name] {
		return nil, tracerr.Errorf("accounts struct %s contains itself. %s", st.Ident.Name, st.Ident.Location)
	}
	b.visiting[st.Ident.Name] = true
	defer delete(b.visiting, st.Ident.Name)

	items := make([]AccountItem, 0, len(st.Fields))
	for _, f := range st.Fields {
		switch f := f.(type) {
		case *syn.Field:
			items = append(items, Account{
				Name:        strcase.ToLowerCamel(f.Ident.Name),
				IsMut:       f.IsMut,
				IsSigner:    f.IsSigner,
				IsInit:      f.IsInit,
				Constraints: describeAll(f.Constraints),
			})
		case *syn.CompositeField:
			nested, ok := b.structs[f.Symbol]
			if !ok {
				return nil, tracerr.Errorf("field %s: unknown accounts struct %s. %s", f.Ident.Name, f.Symbol, f.Ident.Location)
			}
			nestedItems, err := b.accounts(nested)
			if err != nil {
				return nil, err
			}
			items = append(items, Accounts{
				Name:        strcase.ToLowerCamel(f.Ident.Name),
				Constraints: describeAll(f.Constraints),
				Accounts:    nestedItems,
			})
		}
	}

	return items, nil
}

func describeAll(constraints []syn.Constraint) []string {
	var out []string
	for _, c := range constraints {
		out = append(out, Describe(c))
	}
	return out
}

// Describe renders a constraint the way it is written in an annotation.
func Describe(c syn.Constraint) string {
	switch c := c.(type) {
	case syn.ConstraintSigner:
		return "signer"
	case syn.ConstraintSeeds:
		return "seeds = " + c.Seeds.Text
	case syn.ConstraintBelongsTo:
		return "belongs_to = " + c.JoinTarget.Name
	case syn.ConstraintOwner:
		return "owner = " + c.OwnerTarget.Name
	case syn.ConstraintRentExempt:
		return "rent_exempt = " + c.String()
	case syn.ConstraintExecutable:
		return "executable"
	case syn.ConstraintState:
		return "state = " + c.ProgramTarget.Name
	case syn.ConstraintAssociated:
		return "associated = " + c.AssociatedTarget.Name
	case syn.ConstraintLiteral:
		return c.Expr.Source
	}
	return fmt.Sprintf("%v", c)
}

// Marshal encodes the IDL as indented JSON.
func (i *IDL) Marshal() ([]byte, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(i, "", "  ")
	return data, tracerr.Wrap(err)
}
