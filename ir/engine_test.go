package ir

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	ctx := context.Background()
	engine := NewEngine(ctx, EngineConfig{})
	t.Cleanup(func() {
		engine.Close(ctx)
	})
	return engine
}

func TestCompileArithmetic(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	module := NewModule()
	b := module.NewFunction("madd", 3)
	mul := b.FMul(b.Param(0), b.Param(1))
	b.Finish(b.FAdd(mul, b.Param(2)), b.FSub(b.Param(0), b.FDiv(b.Param(1), b.ConstF32(2))))

	compiled, err := engine.Compile(ctx, module)
	if err != nil {
		t.Fatal(err)
	}
	rets, err := compiled.Call(ctx, "madd", 2, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(rets) != 2 {
		t.Fatalf("got %v", rets)
	}
	if rets[0] != 10 {
		t.Fatalf("got %v", rets[0])
	}
	if rets[1] != 0.5 {
		t.Fatalf("got %v", rets[1])
	}
}

func TestCompileBranches(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	module := NewModule()

	// x < y ? x : y
	b := module.NewFunction("min", 2)
	x, y := b.Param(0), b.Param(1)
	b.Finish(b.Select(b.FLt(x, y), x, y))

	// x == 0 ? 7 : 1/x
	b = module.NewFunction("recip", 1)
	x = b.Param(0)
	zero := b.ConstF32(0)
	b.Finish(b.IfElse(
		b.FEq(x, zero),
		func() Value {
			return b.ConstF32(7)
		},
		func() Value {
			return b.FDiv(b.ConstF32(1), x)
		},
	))

	compiled, err := engine.Compile(ctx, module)
	if err != nil {
		t.Fatal(err)
	}

	rets, err := compiled.Call(ctx, "min", 3, -1)
	if err != nil {
		t.Fatal(err)
	}
	if rets[0] != -1 {
		t.Fatalf("got %v", rets)
	}

	rets, err = compiled.Call(ctx, "recip", 0)
	if err != nil {
		t.Fatal(err)
	}
	if rets[0] != 7 {
		t.Fatalf("got %v", rets)
	}
	rets, err = compiled.Call(ctx, "recip", 4)
	if err != nil {
		t.Fatal(err)
	}
	if rets[0] != 0.25 {
		t.Fatalf("got %v", rets)
	}

	// NaN comparisons are false
	rets, err = compiled.Call(ctx, "min", float32(math.NaN()), 2)
	if err != nil {
		t.Fatal(err)
	}
	if rets[0] != 2 {
		t.Fatalf("got %v", rets)
	}
}

func TestCallErrors(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	module := NewModule()
	b := module.NewFunction("id", 1)
	b.Finish(b.Param(0))
	compiled, err := engine.Compile(ctx, module)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := compiled.Call(ctx, "foo"); err == nil {
		t.Fatal("expecting error")
	}
	if _, err := compiled.Call(ctx, "id", 1, 2); err == nil ||
		!strings.Contains(err.Error(), "expecting 1 arguments") {
		t.Fatalf("got %v", err)
	}
}

func TestConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	module := NewModule()
	b := module.NewFunction("square", 1)
	b.Finish(b.FMul(b.Param(0), b.Param(0)))
	compiled, err := engine.Compile(ctx, module)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Go(func() {
			rets, err := compiled.Call(ctx, "square", float32(i))
			if err != nil {
				errs <- err
				return
			}
			if rets[0] != float32(i*i) {
				t.Errorf("got %v for %d", rets[0], i)
			}
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestInterpreterEngine(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(ctx, EngineConfig{
		Interpreter: true,
	})
	defer engine.Close(ctx)
	module := NewModule()
	b := module.NewFunction("add", 2)
	b.Finish(b.FAdd(b.Param(0), b.Param(1)))
	compiled, err := engine.Compile(ctx, module)
	if err != nil {
		t.Fatal(err)
	}
	rets, err := compiled.Call(ctx, "add", 0.1, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	if rets[0] != float32(0.1)+float32(0.2) {
		t.Fatalf("got %v", rets)
	}
}
