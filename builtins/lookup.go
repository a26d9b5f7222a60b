package builtins

import (
	"slices"

	"github.com/reusee/fnvm/fn"
)

const (
	NameAddFloats      = "Add Floats"
	NameMultiplyFloats = "Multiply Floats"
	NameMinimum        = "Minimum"
	NameMaximum        = "Maximum"
	NameMapRange       = "Map Range"
)

var accessors = map[string]func() *fn.Function{
	NameAddFloats:      AddFloats,
	NameMultiplyFloats: MultiplyFloats,
	NameMinimum:        MinFloats,
	NameMaximum:        MaxFloats,
	NameMapRange:       MapRange,
}

// Lookup resolves a built-in by its identity.
func Lookup(name string) (*fn.Function, bool) {
	accessor, ok := accessors[name]
	if !ok {
		return nil, false
	}
	return accessor(), true
}

func Names() []string {
	ret := make([]string, 0, len(accessors))
	for name := range accessors {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}
