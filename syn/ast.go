// Package syn parses accounts structs: Go struct declarations whose fields
// name the accounts an instruction operates on and carry their validation
// constraints in an `account:"..."` struct tag.
package syn

//go:generate sh -c "cd ../tool && go run . ../syn/sealed.adt ../syn/sealed_gen.go syn"

import (
	"fmt"
	"go/ast"

	"github.com/pontaoski/acctsyn/types"
)

type Ident struct {
	Name     string
	Location types.Span
}

func (i Ident) String() string {
	return i.Name
}

// AccountsStruct is the parsed form of one accounts struct. Fields keep
// declaration order.
type AccountsStruct struct {
	Ident  Ident
	Spec   *ast.TypeSpec
	Fields []AccountField
}

// Field is an account backed by one of the primitive wrapper types.
type Field struct {
	Ident           Ident
	Ty              Ty
	Constraints     []Constraint
	IsMut           bool
	IsSigner        bool
	IsInit          bool
	Payer           *Ident
	Space           *Expr
	AssociatedSeeds []Ident
}

// CompositeField embeds another accounts struct. Its accounts are resolved
// by the consumer of the AST, not here.
type CompositeField struct {
	Ident       Ident
	Symbol      string
	Constraints []Constraint
	RawType     ast.Expr
}

// FieldIdent returns the name of either kind of field.
func FieldIdent(f AccountField) Ident {
	switch f := f.(type) {
	case *Field:
		return f.Ident
	case *CompositeField:
		return f.Ident
	}
	panic(fmt.Sprintf("unknown account field %T", f))
}

// FieldConstraints returns the constraints of either kind of field.
func FieldConstraints(f AccountField) []Constraint {
	switch f := f.(type) {
	case *Field:
		return f.Constraints
	case *CompositeField:
		return f.Constraints
	}
	panic(fmt.Sprintf("unknown account field %T", f))
}

type ProgramStateTy struct {
	AccountIdent Ident
}

type CpiStateTy struct {
	AccountIdent Ident
}

type ProgramAccountTy struct {
	AccountIdent Ident
}

type CpiAccountTy struct {
	AccountIdent Ident
}

// LoaderTy is a zero-copy program account.
type LoaderTy struct {
	AccountIdent Ident
}

type SysvarTy struct {
	Kind SysvarKind
}

type AccountInfoTy struct{}

type SysvarKind int

const (
	Clock SysvarKind = iota
	Rent
	EpochSchedule
	Fees
	RecentBlockhashes
	SlotHashes
	SlotHistory
	StakeHistory
	Instructions
	Rewards
)

var sysvarNames = []string{
	Clock:             "Clock",
	Rent:              "Rent",
	EpochSchedule:     "EpochSchedule",
	Fees:              "Fees",
	RecentBlockhashes: "RecentBlockhashes",
	SlotHashes:        "SlotHashes",
	SlotHistory:       "SlotHistory",
	StakeHistory:      "StakeHistory",
	Instructions:      "Instructions",
	Rewards:           "Rewards",
}

func (k SysvarKind) String() string {
	if int(k) < len(sysvarNames) {
		return sysvarNames[k]
	}
	return fmt.Sprintf("SysvarKind(%d)", int(k))
}

// Expr is an expression carried verbatim from an annotation. Source has its
// quotes removed; Node is Source parsed as a Go expression.
type Expr struct {
	Source string
	Node   ast.Expr
}

func (e Expr) String() string {
	return e.Source
}

type ConstraintSigner struct{}

// ConstraintSeeds holds the seeds group exactly as written, delimiters
// included.
type ConstraintSeeds struct {
	Seeds types.Token
}

type ConstraintBelongsTo struct {
	JoinTarget Ident
}

type ConstraintOwner struct {
	OwnerTarget Ident
}

type ConstraintRentExempt int

const (
	RentExemptEnforce ConstraintRentExempt = iota
	RentExemptSkip
)

func (c ConstraintRentExempt) String() string {
	if c == RentExemptSkip {
		return "skip"
	}
	return "enforce"
}

type ConstraintExecutable struct{}

type ConstraintState struct {
	ProgramTarget Ident
}

type ConstraintAssociated struct {
	AssociatedTarget Ident
}

type ConstraintLiteral struct {
	Expr Expr
}
