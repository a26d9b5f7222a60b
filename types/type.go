package types

import "fmt"

// Type is a semantic type tag of a parameter, tuple slot or stack value.
type Type uint8

const (
	Invalid Type = iota
	Float
	Int32
	Float3
)

// Vec3 is the value of a Float3.
type Vec3 [3]float32

type Value interface {
	float32 | int32 | Vec3
}

var typeInfos = [...]struct {
	name  string
	size  int
	align int
	slots int
}{
	Invalid: {"invalid", 0, 1, 0},
	Float:   {"float", 4, 4, 1},
	Int32:   {"int", 4, 4, 1},
	Float3:  {"float3", 12, 4, 3},
}

func (t Type) Valid() bool {
	return t > Invalid && int(t) < len(typeInfos)
}

func (t Type) String() string {
	if int(t) >= len(typeInfos) {
		return fmt.Sprintf("Type(%d)", t)
	}
	return typeInfos[t].name
}

// Size is the byte size of a value in a tuple.
func (t Type) Size() int {
	return typeInfos[t].size
}

func (t Type) Align() int {
	return typeInfos[t].align
}

// Slots is the number of stack slots a value occupies in the bytecode stack.
func (t Type) Slots() int {
	return typeInfos[t].slots
}

func Of[T Value]() Type {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float
	case int32:
		return Int32
	case Vec3:
		return Float3
	}
	panic("impossible")
}

func Parse(name string) (Type, error) {
	for t := Float; int(t) < len(typeInfos); t++ {
		if typeInfos[t].name == name {
			return t, nil
		}
	}
	return Invalid, fmt.Errorf("unknown type: %s", name)
}
