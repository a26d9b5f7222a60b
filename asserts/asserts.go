// Package asserts holds debug-build invariant checks.
// Checks compile away unless the fnvmdebug build tag is set; call sites guard with
// `if asserts.Enabled` so release builds pay nothing for argument construction.
package asserts

import "fmt"

func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("assertion failed: "+format, args...))
	}
}
