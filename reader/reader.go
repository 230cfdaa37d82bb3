// Package reader loads the IDL embedded in a compiled program.
package reader

import (
	"github.com/coreos/pkg/dlopen"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/idl"
)

import "C"

// ReadIDL dlopens the shared library at from and returns the encoded IDL
// stored in its idl.Symbol global.
func ReadIDL(from string) ([]byte, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(idl.Symbol)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	return []byte(C.GoString((*C.char)(sym))), nil
}
