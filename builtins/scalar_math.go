package builtins

import (
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

func simpleMathSignature() fn.Signature {
	return fn.NewSignature([]fn.Parameter{
		fn.Param("A", types.Float),
		fn.Param("B", types.Float),
	}, []fn.Parameter{
		fn.Param("Result", types.Float),
	})
}

func simpleMathFunction(name string, bodies ...fn.Body) *fn.Function {
	builder := fn.NewBuilder(name, simpleMathSignature())
	for _, body := range bodies {
		builder.AddBody(body)
	}
	return builder.Build()
}

type addFloats struct{}

func (addFloats) Capability() fn.Capability {
	return fn.TupleCall
}

func (addFloats) Call(in, out *fn.Tuple, _ *fn.ExecutionContext) {
	a := fn.Get[float32](in, 0)
	b := fn.Get[float32](in, 1)
	fn.Set(out, 0, a+b)
}

type genAddFloats struct{}

func (genAddFloats) Capability() fn.Capability {
	return fn.BuildIR
}

func (genAddFloats) BuildIR(b *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	return append(outputs, b.FAdd(inputs[0], inputs[1]))
}

func AddFloats() *fn.Function {
	return fn.Default.GetOrCreate(NameAddFloats, func() *fn.Function {
		return simpleMathFunction(NameAddFloats, addFloats{}, genAddFloats{})
	})
}

type multiplyFloats struct{}

func (multiplyFloats) Capability() fn.Capability {
	return fn.TupleCall
}

func (multiplyFloats) Call(in, out *fn.Tuple, _ *fn.ExecutionContext) {
	a := fn.Get[float32](in, 0)
	b := fn.Get[float32](in, 1)
	fn.Set(out, 0, a*b)
}

type genMultiplyFloats struct{}

func (genMultiplyFloats) Capability() fn.Capability {
	return fn.BuildIR
}

func (genMultiplyFloats) BuildIR(b *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	return append(outputs, b.FMul(inputs[0], inputs[1]))
}

func MultiplyFloats() *fn.Function {
	return fn.Default.GetOrCreate(NameMultiplyFloats, func() *fn.Function {
		return simpleMathFunction(NameMultiplyFloats, multiplyFloats{}, genMultiplyFloats{})
	})
}

type minFloats struct{}

func (minFloats) Capability() fn.Capability {
	return fn.TupleCall
}

func (minFloats) Call(in, out *fn.Tuple, _ *fn.ExecutionContext) {
	a := fn.Get[float32](in, 0)
	b := fn.Get[float32](in, 1)
	fn.Set(out, 0, Min(a, b))
}

// Min returns a if a < b, b otherwise. Ties and NaN comparisons yield b.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// f32.min differs on NaN and signed zeros, so compare and select instead
type genMinFloats struct{}

func (genMinFloats) Capability() fn.Capability {
	return fn.BuildIR
}

func (genMinFloats) BuildIR(b *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	a, c := inputs[0], inputs[1]
	return append(outputs, b.Select(b.FLt(a, c), a, c))
}

func MinFloats() *fn.Function {
	return fn.Default.GetOrCreate(NameMinimum, func() *fn.Function {
		return simpleMathFunction(NameMinimum, minFloats{}, genMinFloats{})
	})
}

type maxFloats struct{}

func (maxFloats) Capability() fn.Capability {
	return fn.TupleCall
}

func (maxFloats) Call(in, out *fn.Tuple, _ *fn.ExecutionContext) {
	a := fn.Get[float32](in, 0)
	b := fn.Get[float32](in, 1)
	fn.Set(out, 0, Max(a, b))
}

// Max returns b if a < b, a otherwise. Ties and NaN comparisons yield a.
func Max(a, b float32) float32 {
	if a < b {
		return b
	}
	return a
}

type genMaxFloats struct{}

func (genMaxFloats) Capability() fn.Capability {
	return fn.BuildIR
}

func (genMaxFloats) BuildIR(b *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	a, c := inputs[0], inputs[1]
	return append(outputs, b.Select(b.FLt(a, c), c, a))
}

func MaxFloats() *fn.Function {
	return fn.Default.GetOrCreate(NameMaximum, func() *fn.Function {
		return simpleMathFunction(NameMaximum, maxFloats{}, genMaxFloats{})
	})
}
