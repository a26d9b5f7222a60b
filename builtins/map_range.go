package builtins

import (
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

// MapRangeValue maps value from [fromMin, fromMax] to [toMin, toMax].
// A zero-width source range yields toMin. The normalized position is clamped to [0, 1],
// the result is not clamped to the target range.
func MapRangeValue(value, fromMin, fromMax, toMin, toMax float32) float32 {
	fromRange := fromMax - fromMin
	toRange := toMax - toMin
	if fromRange == 0 {
		return toMin
	}
	t := (value - fromMin) / fromRange
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	// conversion forbids fusing into a multiply-add
	return float32(t*toRange) + toMin
}

type mapRange struct{}

func (mapRange) Capability() fn.Capability {
	return fn.TupleCall
}

func (mapRange) Call(in, out *fn.Tuple, _ *fn.ExecutionContext) {
	fn.Set(out, 0, MapRangeValue(
		fn.Get[float32](in, 0),
		fn.Get[float32](in, 1),
		fn.Get[float32](in, 2),
		fn.Get[float32](in, 3),
		fn.Get[float32](in, 4),
	))
}

type genMapRange struct{}

func (genMapRange) Capability() fn.Capability {
	return fn.BuildIR
}

func (genMapRange) BuildIR(b *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	value, fromMin, fromMax, toMin, toMax := inputs[0], inputs[1], inputs[2], inputs[3], inputs[4]
	fromRange := b.FSub(fromMax, fromMin)
	result := b.IfElse(
		b.FEq(fromRange, b.ConstF32(0)),
		func() ir.Value {
			return toMin
		},
		func() ir.Value {
			return genMapRangeNonDegenerate(b, value, fromMin, fromRange, toMin, toMax)
		},
	)
	return append(outputs, result)
}

func genMapRangeNonDegenerate(b *ir.Builder, value, fromMin, fromRange, toMin, toMax ir.Value) ir.Value {
	toRange := b.FSub(toMax, toMin)
	t := b.FDiv(b.FSub(value, fromMin), fromRange)
	zero := b.ConstF32(0)
	one := b.ConstF32(1)
	t = b.Select(b.FLt(t, zero), zero, t)
	t = b.Select(b.FGt(t, one), one, t)
	return b.FAdd(b.FMul(t, toRange), toMin)
}

func MapRange() *fn.Function {
	return fn.Default.GetOrCreate(NameMapRange, func() *fn.Function {
		return fn.NewBuilder(NameMapRange, fn.NewSignature([]fn.Parameter{
			fn.Param("Value", types.Float),
			fn.Param("From Min", types.Float),
			fn.Param("From Max", types.Float),
			fn.Param("To Min", types.Float),
			fn.Param("To Max", types.Float),
		}, []fn.Parameter{
			fn.Param("Value", types.Float),
		})).
			AddBody(mapRange{}).
			AddBody(genMapRange{}).
			Build()
	})
}
