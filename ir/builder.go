package ir

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

type Kind uint8

const (
	F32 Kind = iota + 1
	I32
)

func (k Kind) String() string {
	switch k {
	case F32:
		return "f32"
	case I32:
		return "i32"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is the result of one emitted instruction, held in a function local.
type Value struct {
	builder *Builder
	local   uint32
	kind    Kind
	scope   int
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Valid() bool {
	return v.builder != nil
}

// Builder emits the body of one function.
// Values created inside an IfElse branch are only visible inside that branch.
type Builder struct {
	name      string
	numParams int
	locals    []Kind
	code      []byte
	results   []Value
	finished  bool
	scopes    []int
	nextScope int
}

func (b *Builder) Name() string {
	return b.name
}

func (b *Builder) NumParams() int {
	return b.numParams
}

func (b *Builder) Param(i int) Value {
	if i < 0 || i >= b.numParams {
		panic(fmt.Errorf("param %d out of range, function %s has %d params", i, b.name, b.numParams))
	}
	return Value{
		builder: b,
		local:   uint32(i),
		kind:    F32,
	}
}

func (b *Builder) ConstF32(f float32) Value {
	b.checkOpen()
	b.code = append(b.code, opF32Const)
	b.code = binary.LittleEndian.AppendUint32(b.code, math.Float32bits(f))
	return b.set(F32)
}

func (b *Builder) FAdd(x, y Value) Value {
	return b.binary(opF32Add, x, y, F32)
}

func (b *Builder) FSub(x, y Value) Value {
	return b.binary(opF32Sub, x, y, F32)
}

func (b *Builder) FMul(x, y Value) Value {
	return b.binary(opF32Mul, x, y, F32)
}

func (b *Builder) FDiv(x, y Value) Value {
	return b.binary(opF32Div, x, y, F32)
}

// FLt yields an i32 that is 1 when x < y, 0 otherwise (including NaN operands).
func (b *Builder) FLt(x, y Value) Value {
	return b.binary(opF32Lt, x, y, I32)
}

func (b *Builder) FGt(x, y Value) Value {
	return b.binary(opF32Gt, x, y, I32)
}

func (b *Builder) FEq(x, y Value) Value {
	return b.binary(opF32Eq, x, y, I32)
}

// Select yields a when cond is non-zero, c otherwise. Both operands are evaluated.
func (b *Builder) Select(cond, a, c Value) Value {
	b.checkOpen()
	b.get(a, F32)
	b.get(c, F32)
	b.get(cond, I32)
	b.code = append(b.code, opSelect)
	return b.set(F32)
}

// IfElse emits a structured branch: only the taken arm executes.
func (b *Builder) IfElse(cond Value, then, els func() Value) Value {
	b.checkOpen()
	b.get(cond, I32)
	b.code = append(b.code, opIf, blockTypeF32)
	b.branch(then)
	b.code = append(b.code, opElse)
	b.branch(els)
	b.code = append(b.code, opEnd)
	return b.set(F32)
}

// branch leaves the arm result on the operand stack
func (b *Builder) branch(fn func() Value) {
	b.nextScope++
	b.scopes = append(b.scopes, b.nextScope)
	b.get(fn(), F32)
	b.scopes = b.scopes[:len(b.scopes)-1]
}

// Finish seals the function with its results, in output order.
func (b *Builder) Finish(results ...Value) {
	b.checkOpen()
	for _, v := range results {
		b.check(v, F32)
	}
	b.results = slices.Clone(results)
	b.finished = true
}

func (b *Builder) checkOpen() {
	if b.finished {
		panic(fmt.Errorf("function %s already finished", b.name))
	}
}

func (b *Builder) check(v Value, kind Kind) {
	if v.builder != b {
		panic(fmt.Errorf("value does not belong to function %s", b.name))
	}
	if v.kind != kind {
		panic(fmt.Errorf("expecting %v value, got %v", kind, v.kind))
	}
	if v.scope != 0 && !slices.Contains(b.scopes, v.scope) {
		panic(fmt.Errorf("value used outside of its branch in function %s", b.name))
	}
}

func (b *Builder) binary(op byte, x, y Value, out Kind) Value {
	b.checkOpen()
	b.get(x, F32)
	b.get(y, F32)
	b.code = append(b.code, op)
	return b.set(out)
}

func (b *Builder) get(v Value, kind Kind) {
	b.check(v, kind)
	b.code = append(b.code, opLocalGet)
	b.code = appendULEB(b.code, v.local)
}

func (b *Builder) set(kind Kind) Value {
	local := uint32(b.numParams + len(b.locals))
	b.locals = append(b.locals, kind)
	b.code = append(b.code, opLocalSet)
	b.code = appendULEB(b.code, local)
	var scope int
	if len(b.scopes) > 0 {
		scope = b.scopes[len(b.scopes)-1]
	}
	return Value{
		builder: b,
		local:   local,
		kind:    kind,
		scope:   scope,
	}
}
