package fn

import (
	"context"
	"fmt"

	"github.com/reusee/fnvm/ir"
)

// Capability is an execution strategy a body implements.
type Capability uint8

const (
	TupleCall Capability = iota
	BuildIR

	numCapabilities
)

func (c Capability) String() string {
	switch c {
	case TupleCall:
		return "tuple call"
	case BuildIR:
		return "build ir"
	}
	return fmt.Sprintf("Capability(%d)", c)
}

type Body interface {
	Capability() Capability
}

// TupleCallBody computes outputs from inputs by interpretation.
// Call must have no side effects beyond writing out.
type TupleCallBody interface {
	Body
	Call(in, out *Tuple, ctx *ExecutionContext)
}

// BuildIRBody describes the computation structurally.
// It appends one value per output, in output order, and returns the extended slice.
type BuildIRBody interface {
	Body
	BuildIR(builder *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value
}

// TupleCallFunc adapts a function to a TupleCallBody.
type TupleCallFunc func(in, out *Tuple, ctx *ExecutionContext)

var _ TupleCallBody = TupleCallFunc(nil)

func (TupleCallFunc) Capability() Capability {
	return TupleCall
}

func (f TupleCallFunc) Call(in, out *Tuple, ctx *ExecutionContext) {
	f(in, out, ctx)
}

// BuildIRFunc adapts a function to a BuildIRBody.
type BuildIRFunc func(builder *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value

var _ BuildIRBody = BuildIRFunc(nil)

func (BuildIRFunc) Capability() Capability {
	return BuildIR
}

func (f BuildIRFunc) BuildIR(builder *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	return f(builder, inputs, outputs)
}

type ExecutionContext struct {
	ctx context.Context
}

func NewExecutionContext(ctx context.Context) *ExecutionContext {
	return &ExecutionContext{
		ctx: ctx,
	}
}

func (e *ExecutionContext) Context() context.Context {
	return e.ctx
}

func (e *ExecutionContext) Canceled() bool {
	return e.ctx.Err() != nil
}
