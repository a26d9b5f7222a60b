package fn

import (
	"context"
	"errors"
	"testing"

	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

func newTestJIT(t *testing.T) *JIT {
	ctx := context.Background()
	engine := ir.NewEngine(ctx, ir.EngineConfig{})
	t.Cleanup(func() {
		engine.Close(ctx)
	})
	return NewJIT(engine)
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	jit := newTestJIT(t)

	interpOnly := NewBuilder("Subtract", testSig).AddBody(subBody()).Build()
	codegenOnly := NewBuilder("Subtract", testSig).AddBody(subIR()).Build()
	both := NewBuilder("Subtract", testSig).AddBody(subBody()).AddBody(subIR()).Build()
	none := NewBuilder("Subtract", testSig).Build()

	for _, f := range []*Function{interpOnly, codegenOnly, both} {
		in := testSig.NewInputs()
		out := testSig.NewOutputs()
		Set[float32](in, 0, 10)
		Set[float32](in, 1, 4)
		if err := Evaluate(ctx, jit, f, in, out); err != nil {
			t.Fatal(err)
		}
		if Get[float32](out, 0) != 6 {
			t.Fatalf("got %v", Get[float32](out, 0))
		}
	}

	// no jit, interpreted body only
	out := testSig.NewOutputs()
	if err := Evaluate(ctx, nil, interpOnly, testSig.NewInputs(), out); err != nil {
		t.Fatal(err)
	}

	if err := Evaluate(ctx, nil, codegenOnly, testSig.NewInputs(), out); !errors.Is(err, ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
	if err := Evaluate(ctx, jit, none, testSig.NewInputs(), out); !errors.Is(err, ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
}

func TestCompileUnsupported(t *testing.T) {
	ctx := context.Background()
	jit := newTestJIT(t)

	interpOnly := NewBuilder("Subtract", testSig).AddBody(subBody()).Build()
	if _, err := jit.Compiled(ctx, interpOnly); !errors.Is(err, ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}

	intSig := NewSignature([]Parameter{
		Param("n", types.Int32),
	}, nil)
	intFn := NewBuilder("Int", intSig).AddBody(BuildIRFunc(func(_ *ir.Builder, _ []ir.Value, outputs []ir.Value) []ir.Value {
		return outputs
	})).Build()
	if _, err := BuildModule(intFn); !errors.Is(err, ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}

	// falls back to nothing
	out := intSig.NewOutputs()
	if err := Evaluate(ctx, jit, intFn, intSig.NewInputs(), out); !errors.Is(err, ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
}

func TestJITCachesCompiledCode(t *testing.T) {
	ctx := context.Background()
	jit := newTestJIT(t)
	f := NewBuilder("Subtract", testSig).AddBody(subIR()).Build()
	c1, err := jit.Compiled(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := jit.Compiled(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 || c1.Function() != f {
		t.Fatal()
	}
}

func TestBuildModuleOutputCount(t *testing.T) {
	f := NewBuilder("Bad", testSig).AddBody(BuildIRFunc(func(_ *ir.Builder, _ []ir.Value, outputs []ir.Value) []ir.Value {
		return outputs
	})).Build()
	if _, err := BuildModule(f); err == nil {
		t.Fatal("expecting error")
	}
}
