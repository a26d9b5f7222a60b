package graphs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/reusee/fnvm/builtins"
	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

func input(i int) Socket {
	return Socket{Node: GraphInput, Index: i}
}

func result(node int) Socket {
	return Socket{Node: node}
}

// prod = (x + y) * y, min = min(prod, x), mapped = map_range(prod, x, y, x + y, min)
func testGraph() *Graph {
	return &Graph{
		Name: "test",
		Inputs: []fn.Parameter{
			fn.Param("x", types.Float),
			fn.Param("y", types.Float),
		},
		Nodes: []Node{
			{Function: builtins.AddFloats(), Inputs: []Socket{input(0), input(1)}},
			{Function: builtins.MultiplyFloats(), Inputs: []Socket{result(0), input(1)}},
			{Function: builtins.MinFloats(), Inputs: []Socket{result(1), input(0)}},
			{Function: builtins.MapRange(), Inputs: []Socket{result(1), input(0), input(1), result(0), result(2)}},
		},
		Outputs: []Output{
			{Name: "prod", Socket: result(1)},
			{Name: "min", Socket: result(2)},
			{Name: "mapped", Socket: result(3)},
			{Name: "x", Socket: input(0)},
		},
	}
}

func reference(x, y float32) [4]float32 {
	sum := x + y
	prod := sum * y
	lo := builtins.Min(prod, x)
	return [4]float32{
		prod,
		lo,
		builtins.MapRangeValue(prod, x, y, sum, lo),
		x,
	}
}

func interpret(f *fn.Function, x, y float32) (ret [4]float32) {
	in := f.Signature().NewInputs()
	out := f.Signature().NewOutputs()
	fn.Set(in, 0, x)
	fn.Set(in, 1, y)
	f.Call(fn.NewExecutionContext(context.Background()), in, out)
	for i := range ret {
		ret[i] = fn.Get[float32](out, i)
	}
	return
}

func sameFloats(a, b [4]float32) bool {
	for i := range a {
		if a[i] != b[i] && (a[i] == a[i] || b[i] == b[i]) {
			return false
		}
	}
	return true
}

func TestGraphFunction(t *testing.T) {
	f, err := testGraph().Function()
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "test" {
		t.Fatal()
	}
	if !f.Supports(fn.TupleCall) || !f.Supports(fn.BuildIR) {
		t.Fatal()
	}
	sig := f.Signature()
	if sig.NumInputs() != 2 || sig.NumOutputs() != 4 || sig.Output(2).Name != "mapped" {
		t.Fatalf("got %v", sig)
	}
	if got := interpret(f, 1, 2); got != reference(1, 2) {
		t.Fatalf("got %v", got)
	}
}

func TestGraphBackendsAgree(t *testing.T) {
	ctx := context.Background()
	engine := ir.NewEngine(ctx, ir.EngineConfig{})
	defer engine.Close(ctx)

	g := testGraph()
	f, err := g.Function()
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := fn.Compile(ctx, engine, f)
	if err != nil {
		t.Fatal(err)
	}
	code, err := CompileBVM(g)
	if err != nil {
		t.Fatal(err)
	}
	evalCtx := bvm.NewEvalContext()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	properties.Property("interpreted, compiled and bytecode agree", prop.ForAll(
		func(x, y float32) bool {
			expected := reference(x, y)

			if !sameFloats(interpret(f, x, y), expected) {
				return false
			}

			in := f.Signature().NewInputs()
			out := f.Signature().NewOutputs()
			fn.Set(in, 0, x)
			fn.Set(in, 1, y)
			if err := compiled.Call(ctx, in, out); err != nil {
				return false
			}
			var got [4]float32
			for i := range got {
				got[i] = fn.Get[float32](out, i)
			}
			if !sameFloats(got, expected) {
				return false
			}

			got = [4]float32{}
			evalCtx.EvalFunction(nil, nil, code, []any{&x, &y}, []any{&got[0], &got[1], &got[2], &got[3]})
			return sameFloats(got, expected)
		},
		gen.Float32Range(-100, 100),
		gen.Float32Range(-100, 100),
	))
	properties.TestingRun(t)
}

func TestGraphNodeEntryPoints(t *testing.T) {
	code, err := CompileBVM(testGraph())
	if err != nil {
		t.Fatal(err)
	}
	for i := range 4 {
		if _, ok := code.EntryPoint(NodeEntryPoint(i)); !ok {
			t.Fatalf("no entry point for node %d", i)
		}
	}

	// re-evaluate from node 2 with a modified product
	stack := bvm.NewStack()
	x, y := code.Arguments[0].Offset, code.Arguments[1].Offset
	stack.SetFloat(x, 1)
	stack.SetFloat(y, 2)
	bvm.NewEvalContext().EvalExpression(nil, nil, code, code.Entry, stack)
	prod := code.Returns[0].Offset
	if got := stack.Float(prod); got != 6 {
		t.Fatalf("got %v", got)
	}
	stack.SetFloat(prod, -5)
	entry, _ := code.EntryPoint(NodeEntryPoint(2))
	bvm.NewEvalContext().EvalExpression(nil, nil, code, entry, stack)
	if got := stack.Float(code.Returns[1].Offset); got != -5 {
		t.Fatalf("got %v", got)
	}
}

func TestNestedGraph(t *testing.T) {
	inner, err := testGraph().Function()
	if err != nil {
		t.Fatal(err)
	}
	outer := &Graph{
		Name: "outer",
		Inputs: []fn.Parameter{
			fn.Param("a", types.Float),
		},
		Nodes: []Node{
			{Function: inner, Inputs: []Socket{input(0), input(0)}},
			{Function: builtins.AddFloats(), Inputs: []Socket{{Node: 0, Index: 2}, {Node: 0, Index: 0}}},
		},
		Outputs: []Output{
			{Name: "out", Socket: result(1)},
		},
	}
	f, err := outer.Function()
	if err != nil {
		t.Fatal(err)
	}
	if !f.Supports(fn.BuildIR) {
		t.Fatal("should be lowerable")
	}

	ctx := context.Background()
	engine := ir.NewEngine(ctx, ir.EngineConfig{Interpreter: true})
	defer engine.Close(ctx)
	jit := fn.NewJIT(engine)
	for _, a := range []float32{-3, 0, 0.5, 7} {
		in := f.Signature().NewInputs()
		fn.Set(in, 0, a)
		interpreted := f.Signature().NewOutputs()
		f.Call(fn.NewExecutionContext(ctx), in, interpreted)
		compiled := f.Signature().NewOutputs()
		if err := fn.Evaluate(ctx, jit, f, in, compiled); err != nil {
			t.Fatal(err)
		}
		ref := reference(a, a)
		expected := ref[2] + ref[0]
		if fn.Get[float32](interpreted, 0) != expected || fn.Get[float32](compiled, 0) != expected {
			t.Fatalf("%v: got %v %v, expecting %v", a,
				fn.Get[float32](interpreted, 0), fn.Get[float32](compiled, 0), expected)
		}
	}

	// nested graphs have no bytecode lowering
	if _, err := CompileBVM(outer); !errors.Is(err, fn.ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
}

var countSig = fn.NewSignature(
	[]fn.Parameter{fn.Param("N", types.Int32)},
	[]fn.Parameter{fn.Param("Half", types.Float)},
)

func countFunction() *fn.Function {
	return fn.NewBuilder("Half", countSig).
		AddBody(fn.TupleCallFunc(func(in, out *fn.Tuple, ctx *fn.ExecutionContext) {
			fn.Set(out, 0, float32(fn.Get[int32](in, 0))/2)
		})).
		Build()
}

func TestGraphMixedTypes(t *testing.T) {
	g := &Graph{
		Name: "mixed",
		Inputs: []fn.Parameter{
			fn.Param("n", types.Int32),
			fn.Param("x", types.Float),
		},
		Nodes: []Node{
			{Function: countFunction(), Inputs: []Socket{input(0)}},
			{Function: builtins.AddFloats(), Inputs: []Socket{result(0), input(1)}},
		},
		Outputs: []Output{
			{Name: "sum", Socket: result(1)},
		},
	}
	f, err := g.Function()
	if err != nil {
		t.Fatal(err)
	}
	if f.Supports(fn.BuildIR) {
		t.Fatal("should not be lowerable")
	}
	in := f.Signature().NewInputs()
	out := f.Signature().NewOutputs()
	fn.Set[int32](in, 0, 5)
	fn.Set[float32](in, 1, 1)
	f.Call(fn.NewExecutionContext(context.Background()), in, out)
	if got := fn.Get[float32](out, 0); got != 3.5 {
		t.Fatalf("got %v", got)
	}

	if _, err := CompileBVM(g); !errors.Is(err, fn.ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
}

func TestGraphFunctionIsolated(t *testing.T) {
	g := testGraph()
	f, err := g.Function()
	if err != nil {
		t.Fatal(err)
	}
	g.Nodes[1].Function = builtins.AddFloats()
	g.Nodes[0].Inputs[1] = input(0)
	if got := interpret(f, 1, 2); got != reference(1, 2) {
		t.Fatalf("got %v", got)
	}
}

func TestGraphConcurrentCalls(t *testing.T) {
	f, err := testGraph().Function()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			for j := range 50 {
				x, y := float32(i), float32(j)/4
				if got := interpret(f, x, y); got != reference(x, y) {
					t.Errorf("%v %v: got %v", x, y, got)
					return
				}
			}
		})
	}
	wg.Wait()
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(g *Graph)
		msg    string
	}{
		{"forward reference", func(g *Graph) {
			g.Nodes[0].Inputs[0] = result(1)
		}, "node 1 is not evaluated before"},
		{"self reference", func(g *Graph) {
			g.Nodes[1].Inputs[0] = result(1)
		}, "node 1 is not evaluated before"},
		{"arity", func(g *Graph) {
			g.Nodes[0].Inputs = g.Nodes[0].Inputs[:1]
		}, "1 inputs wired, signature has 2"},
		{"graph input range", func(g *Graph) {
			g.Nodes[0].Inputs[0] = input(2)
		}, "no graph input 2"},
		{"output range", func(g *Graph) {
			g.Nodes[1].Inputs[0] = Socket{Node: 0, Index: 1}
		}, "node 0 has no output 1"},
		{"type mismatch", func(g *Graph) {
			g.Inputs[0].Type = types.Int32
		}, "expecting float, got int"},
		{"nil function", func(g *Graph) {
			g.Nodes[2].Function = nil
		}, "node 2 has no function"},
		{"duplicated input", func(g *Graph) {
			g.Inputs[1].Name = "x"
		}, "duplicated input x"},
		{"duplicated output", func(g *Graph) {
			g.Outputs[1].Name = "prod"
		}, "duplicated output prod"},
		{"bad output socket", func(g *Graph) {
			g.Outputs[0].Socket = result(4)
		}, "output prod"},
		{"invalid input type", func(g *Graph) {
			g.Inputs = append(g.Inputs, fn.Param("z", types.Invalid))
		}, "input z has invalid type"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := testGraph()
			c.modify(g)
			err := g.Validate()
			if !errors.Is(err, ErrInvalidGraph) {
				t.Fatalf("got %v", err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Fatalf("got %v", err)
			}
			if _, err := g.Function(); !errors.Is(err, ErrInvalidGraph) {
				t.Fatalf("got %v", err)
			}
			if _, err := CompileBVM(g); !errors.Is(err, ErrInvalidGraph) {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestGraphWithoutTupleCall(t *testing.T) {
	irOnly := fn.NewBuilder("IR Only", countSig).Build()
	g := &Graph{
		Name:   "g",
		Inputs: []fn.Parameter{fn.Param("n", types.Int32)},
		Nodes: []Node{
			{Function: irOnly, Inputs: []Socket{input(0)}},
		},
	}
	if _, err := g.Function(); !errors.Is(err, fn.ErrCapabilityUnsupported) {
		t.Fatalf("got %v", err)
	}
}

func TestEmptyGraph(t *testing.T) {
	g := &Graph{Name: "empty"}
	f, err := g.Function()
	if err != nil {
		t.Fatal(err)
	}
	f.Call(fn.NewExecutionContext(context.Background()), f.Signature().NewInputs(), f.Signature().NewOutputs())
	code, err := CompileBVM(g)
	if err != nil {
		t.Fatal(err)
	}
	bvm.NewEvalContext().EvalFunction(nil, nil, code, nil, nil)
}
