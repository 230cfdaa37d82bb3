package idl

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// Symbol is the global an encoded IDL is stored in.
const Symbol = "__acctsyn_idl"

// EmitLLVM returns a module holding data as a NUL-terminated immutable
// global, ready to be linked into the program it describes.
func EmitLLVM(data []byte) *ir.Module {
	m := ir.NewModule()
	registerIDLWithModule(data, m)
	return m
}

func registerIDLWithModule(data []byte, m *ir.Module) {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)

	g := m.NewGlobalDef(Symbol, constant.NewCharArray(append(buf, 0)))
	g.Immutable = true
}
