package configs

import (
	"errors"
	"iter"
)

// Lookup decodes the first value at path. ok is false when no file defines it.
func Lookup[T any](loader Loader, path string) (value T, ok bool, err error) {
	err = loader.AssignFirst(path, &value)
	if errors.Is(err, ErrValueNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// First is Lookup with the zero value for undefined paths. Invalid configs panic.
func First[T any](loader Loader, path string) T {
	value, _, err := Lookup[T](loader, path)
	if err != nil {
		panic(err)
	}
	return value
}

// All yields the value at path from every file that defines it, in precedence order.
// Invalid configs panic.
func All[T any](loader Loader, path string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for value, err := range loader.IterCueValues(path) {
			if err != nil {
				panic(err)
			}
			var v T
			if err := value.Decode(&v); err != nil {
				panic(err)
			}
			if !yield(v) {
				return
			}
		}
	}
}
