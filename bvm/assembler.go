package bvm

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/reusee/fnvm/types"
)

var ErrStackOverflow = errors.New("stack capacity exceeded")

// Assembler builds a Function instruction by instruction.
// Stack slots are handed out by a bump allocator; an allocation beyond StackSize is
// reported by Function.
type Assembler struct {
	fn   *Function
	next int
	err  error
}

func NewAssembler(name string) *Assembler {
	return &Assembler{
		fn: &Function{
			Name:        name,
			EntryPoints: make(map[string]int),
		},
	}
}

// Alloc reserves stack slots for a value of typ and returns its offset.
func (a *Assembler) Alloc(typ types.Type) int {
	offset := a.next
	a.next += typ.Slots()
	if a.next > StackSize && a.err == nil {
		a.err = fmt.Errorf("%w: %s needs more than %d slots", ErrStackOverflow, a.fn.Name, StackSize)
	}
	return offset
}

// Used is the number of allocated slots.
func (a *Assembler) Used() int {
	return a.next
}

func (a *Assembler) Argument(name string, typ types.Type) int {
	offset := a.Alloc(typ)
	a.fn.Arguments = append(a.fn.Arguments, Argument{
		Name:   name,
		Type:   typ,
		Offset: offset,
	})
	return offset
}

func (a *Assembler) Return(name string, typ types.Type, offset int) {
	a.fn.Returns = append(a.fn.Returns, Argument{
		Name:   name,
		Type:   typ,
		Offset: offset,
	})
}

// Emit appends one instruction and returns its position.
func (a *Assembler) Emit(op OpCode, operands ...int) int {
	if !op.Valid() {
		panic(fmt.Errorf("invalid opcode %d", op))
	}
	if len(operands) != op.NumOperands() {
		panic(fmt.Errorf("%v takes %d operands, got %d", op, op.NumOperands(), len(operands)))
	}
	pc := len(a.fn.Code)
	a.fn.Code = append(a.fn.Code, uint32(op))
	for _, operand := range operands {
		a.fn.Code = append(a.fn.Code, uint32(operand))
	}
	return pc
}

// Const encodes a float constant operand.
func Const(v float32) int {
	return int(math.Float32bits(v))
}

// ValueFloat stores a constant into a new slot and returns the slot.
func (a *Assembler) ValueFloat(v float32) int {
	dst := a.Alloc(types.Float)
	a.Emit(OpValueFloat, Const(v), dst)
	return dst
}

func (a *Assembler) ValueInt(v int32) int {
	dst := a.Alloc(types.Int32)
	a.Emit(OpValueInt, int(uint32(v)), dst)
	return dst
}

func (a *Assembler) PC() int {
	return len(a.fn.Code)
}

// Patch sets the jump target of the jump instruction at pc.
func (a *Assembler) Patch(pc int, target int) {
	op := OpCode(a.fn.Code[pc])
	switch op {
	case OpJump:
		a.fn.Code[pc+1] = uint32(target)
	case OpJumpIfZero:
		a.fn.Code[pc+2] = uint32(target)
	default:
		panic(fmt.Errorf("not a jump at %d: %v", pc, op))
	}
}

// EntryPoint names the current position.
func (a *Assembler) EntryPoint(name string) {
	a.fn.EntryPoints[name] = a.PC()
}

// Function returns the validated function. The assembler must not be used afterwards.
func (a *Assembler) Function() (*Function, error) {
	if a.err != nil {
		return nil, a.err
	}
	fn := a.fn
	fn.Code = slices.Clip(fn.Code)
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}
