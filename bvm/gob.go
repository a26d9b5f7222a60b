package bvm

import (
	"encoding/gob"
	"io"
)

// Encode writes fn in a form Decode reads back.
func Encode(w io.Writer, fn *Function) error {
	if err := gob.NewEncoder(w).Encode(fn); err != nil {
		return wrap(err)
	}
	return nil
}

// Decode reads and validates a function.
func Decode(r io.Reader) (*Function, error) {
	fn := new(Function)
	if err := gob.NewDecoder(r).Decode(fn); err != nil {
		return nil, wrap(err)
	}
	if fn.EntryPoints == nil {
		fn.EntryPoints = make(map[string]int)
	}
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}
