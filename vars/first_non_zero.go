package vars

import "cmp"

// FirstNonZero returns the first value that is not the zero value, used to layer
// flags over configs over defaults.
func FirstNonZero[T comparable](values ...T) T {
	return cmp.Or(values...)
}
