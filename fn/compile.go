package fn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

// BuildModule emits f as a single IR function named after f.
func BuildModule(f *Function) (*ir.Module, error) {
	body, ok := f.IRBody()
	if !ok {
		return nil, fmt.Errorf("%s: %w: %v", f.name, ErrCapabilityUnsupported, BuildIR)
	}
	sig := f.signature
	if !sig.AllInputs(types.Float) || !sig.AllOutputs(types.Float) {
		return nil, fmt.Errorf("%s: %w: non-float parameters", f.name, ErrCapabilityUnsupported)
	}

	module := ir.NewModule()
	builder := module.NewFunction(f.name, sig.NumInputs())
	inputs := make([]ir.Value, sig.NumInputs())
	for i := range inputs {
		inputs[i] = builder.Param(i)
	}
	outputs := body.BuildIR(builder, inputs, nil)
	if len(outputs) != sig.NumOutputs() {
		return nil, fmt.Errorf("%s: ir body produced %d outputs, signature has %d",
			f.name, len(outputs), sig.NumOutputs())
	}
	builder.Finish(outputs...)
	return module, nil
}

// Compiled is machine code of one function.
type Compiled struct {
	fn   *Function
	code *ir.Compiled
}

func Compile(ctx context.Context, engine *ir.Engine, f *Function) (*Compiled, error) {
	module, err := BuildModule(f)
	if err != nil {
		return nil, err
	}
	code, err := engine.Compile(ctx, module)
	if err != nil {
		return nil, wrap(err)
	}
	return &Compiled{
		fn:   f,
		code: code,
	}, nil
}

func (c *Compiled) Function() *Function {
	return c.fn
}

// Call runs the compiled code with the same tuple convention as the tuple-call body.
func (c *Compiled) Call(ctx context.Context, in, out *Tuple) error {
	args := make([]float32, in.Len())
	for i := range args {
		args[i] = Get[float32](in, i)
	}
	rets, err := c.code.Call(ctx, c.fn.name, args...)
	if err != nil {
		return err
	}
	for i, v := range rets {
		Set(out, i, v)
	}
	return nil
}

// JIT caches compiled code per function.
type JIT struct {
	engine  *ir.Engine
	entries sync.Map // *Function -> func() (*Compiled, error)
}

func NewJIT(engine *ir.Engine) *JIT {
	return &JIT{
		engine: engine,
	}
}

func (j *JIT) Compiled(ctx context.Context, f *Function) (*Compiled, error) {
	if v, ok := j.entries.Load(f); ok {
		return v.(func() (*Compiled, error))()
	}
	// compilation result is shared, so it must not observe one caller's cancellation
	compileCtx := context.WithoutCancel(ctx)
	get := sync.OnceValues(func() (*Compiled, error) {
		return Compile(compileCtx, j.engine, f)
	})
	v, _ := j.entries.LoadOrStore(f, get)
	return v.(func() (*Compiled, error))()
}

// Evaluate runs f preferring compiled code, falling back to the tuple-call body.
// jit may be nil.
func Evaluate(ctx context.Context, jit *JIT, f *Function, in, out *Tuple) error {
	if jit != nil && f.Supports(BuildIR) {
		compiled, err := jit.Compiled(ctx, f)
		if err == nil {
			return compiled.Call(ctx, in, out)
		}
		if !errors.Is(err, ErrCapabilityUnsupported) {
			return err
		}
	}
	body, ok := f.TupleCall()
	if !ok {
		return fmt.Errorf("%s: %w", f.name, ErrCapabilityUnsupported)
	}
	body.Call(in, out, NewExecutionContext(ctx))
	return nil
}
