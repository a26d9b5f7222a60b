package bvm

import (
	"math"

	"github.com/reusee/fnvm/asserts"
	"github.com/reusee/fnvm/types"
)

const StackSize = 4095

// Stack is the numeric evaluation stack. Int32 values are stored bit-cast,
// Float3 values occupy three consecutive slots.
type Stack []float32

func NewStack() Stack {
	return make(Stack, StackSize)
}

func (s Stack) check(offset int, slots int) {
	if asserts.Enabled {
		asserts.That(offset >= 0 && offset+slots <= StackSize,
			"stack offset %d (%d slots) exceeds capacity %d", offset, slots, StackSize)
	}
}

func (s Stack) Float(offset int) float32 {
	s.check(offset, 1)
	return s[offset]
}

func (s Stack) SetFloat(offset int, v float32) {
	s.check(offset, 1)
	s[offset] = v
}

func (s Stack) Int(offset int) int32 {
	s.check(offset, 1)
	return int32(math.Float32bits(s[offset]))
}

func (s Stack) SetInt(offset int, v int32) {
	s.check(offset, 1)
	s[offset] = math.Float32frombits(uint32(v))
}

func (s Stack) Float3(offset int) types.Vec3 {
	s.check(offset, 3)
	return types.Vec3(s[offset : offset+3])
}

func (s Stack) SetFloat3(offset int, v types.Vec3) {
	s.check(offset, 3)
	copy(s[offset:offset+3], v[:])
}
