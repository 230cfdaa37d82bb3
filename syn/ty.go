package syn

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"

	"github.com/pontaoski/acctsyn/errors"
)

// primitives are the wrapper types that make a field a single account.
var primitives = map[string]bool{
	"ProgramState":   true,
	"ProgramAccount": true,
	"CpiAccount":     true,
	"Sysvar":         true,
	"AccountInfo":    true,
	"CpiState":       true,
	"Loader":         true,
}

var sysvars = map[string]SysvarKind{
	"Clock":             Clock,
	"Rent":              Rent,
	"EpochSchedule":     EpochSchedule,
	"Fees":              Fees,
	"RecentBlockhashes": RecentBlockhashes,
	"SlotHashes":        SlotHashes,
	"SlotHistory":       SlotHistory,
	"StakeHistory":      StakeHistory,
	"Instructions":      Instructions,
	"Rewards":           Rewards,
}

func isFieldPrimitive(name string) bool {
	return primitives[name]
}

// typeArgs splits a generic instantiation into its base and arguments.
func typeArgs(expr ast.Expr) (ast.Expr, []ast.Expr) {
	switch t := expr.(type) {
	case *ast.IndexExpr:
		return t.X, []ast.Expr{t.Index}
	case *ast.IndexListExpr:
		return t.X, t.Indices
	}
	return expr, nil
}

// identString returns the name of the type a field is declared with.
// Qualified names are not supported.
func identString(fset *token.FileSet, expr ast.Expr) (string, error) {
	base, _ := typeArgs(expr)
	switch b := base.(type) {
	case *ast.Ident:
		return b.Name, nil
	case *ast.SelectorExpr:
		return "", errors.UnsupportedPath{
			Path:     gotypes.ExprString(b),
			Location: span(fset, b),
		}
	}
	return "", errors.InvalidAccount{
		Reason:   fmt.Sprintf("field type %s is not a named type", gotypes.ExprString(expr)),
		Location: span(fset, expr),
	}
}

func parseTy(fset *token.FileSet, name string, expr ast.Expr) (Ty, error) {
	if name == "AccountInfo" {
		return AccountInfoTy{}, nil
	}
	if name == "Sysvar" {
		return parseSysvar(fset, expr)
	}

	account, err := parseAccount(fset, name, expr)
	if err != nil {
		return nil, err
	}

	switch name {
	case "ProgramState":
		return ProgramStateTy{AccountIdent: account}, nil
	case "CpiState":
		return CpiStateTy{AccountIdent: account}, nil
	case "ProgramAccount":
		return ProgramAccountTy{AccountIdent: account}, nil
	case "CpiAccount":
		return CpiAccountTy{AccountIdent: account}, nil
	case "Loader":
		return LoaderTy{AccountIdent: account}, nil
	}

	return nil, errors.InvalidAccount{
		Reason:   fmt.Sprintf("%s is not an account type", name),
		Location: span(fset, expr),
	}
}

// parseAccount extracts Account from Wrapper[Info, Account].
func parseAccount(fset *token.FileSet, wrapper string, expr ast.Expr) (Ident, error) {
	_, args := typeArgs(expr)
	if len(args) != 2 {
		return Ident{}, errors.InvalidAccount{
			Wrapper:  wrapper,
			Reason:   fmt.Sprintf("expected 2 type arguments, got %d", len(args)),
			Location: span(fset, expr),
		}
	}

	account, _ := typeArgs(args[1])
	switch a := account.(type) {
	case *ast.Ident:
		return identOf(fset, a), nil
	case *ast.SelectorExpr:
		return Ident{}, errors.UnsupportedPath{
			Path:     gotypes.ExprString(a),
			Location: span(fset, a),
		}
	}

	return Ident{}, errors.InvalidAccount{
		Wrapper:  wrapper,
		Reason:   fmt.Sprintf("%s is not a named type", gotypes.ExprString(args[1])),
		Location: span(fset, args[1]),
	}
}

func parseSysvar(fset *token.FileSet, expr ast.Expr) (Ty, error) {
	account, err := parseAccount(fset, "Sysvar", expr)
	if err != nil {
		return nil, err
	}

	kind, ok := sysvars[account.Name]
	if !ok {
		return nil, errors.InvalidAccount{
			Wrapper:  "Sysvar",
			Reason:   fmt.Sprintf("unknown sysvar %s", account.Name),
			Location: account.Location,
		}
	}

	return SysvarTy{Kind: kind}, nil
}
