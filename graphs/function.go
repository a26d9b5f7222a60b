package graphs

import (
	"fmt"
	"sync"

	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/types"
)

// Function builds a function computing the graph. It always has a tuple-call body
// evaluating the nodes in order; it has an IR body when every node has one and every
// value is a float. Later changes to g do not affect the function.
func (g *Graph) Function() (*fn.Function, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g = g.clone()
	for i, node := range g.Nodes {
		if !node.Function.Supports(fn.TupleCall) {
			return nil, fmt.Errorf("%s: node %d (%s): %w: %v",
				g.Name, i, node.Function.Name(), fn.ErrCapabilityUnsupported, fn.TupleCall)
		}
	}

	builder := fn.NewBuilder(g.Name, g.Signature()).
		AddBody(g.tupleCallBody())
	if g.lowerableToIR() {
		builder.AddBody(fn.BuildIRFunc(g.buildIR))
	}
	return builder.Build(), nil
}

type scratch struct {
	inputs  []*fn.Tuple
	outputs []*fn.Tuple
}

func (g *Graph) tupleCallBody() fn.TupleCallFunc {
	// one scratch set per concurrent evaluation
	pool := &sync.Pool{
		New: func() any {
			s := &scratch{
				inputs:  make([]*fn.Tuple, len(g.Nodes)),
				outputs: make([]*fn.Tuple, len(g.Nodes)),
			}
			for i, node := range g.Nodes {
				s.inputs[i] = node.Function.Signature().NewInputs()
				s.outputs[i] = node.Function.Signature().NewOutputs()
			}
			return s
		},
	}

	return func(in, out *fn.Tuple, ctx *fn.ExecutionContext) {
		s := pool.Get().(*scratch)
		defer pool.Put(s)
		source := func(socket Socket) *fn.Tuple {
			if socket.Node == GraphInput {
				return in
			}
			return s.outputs[socket.Node]
		}
		for i, node := range g.Nodes {
			for j, socket := range node.Inputs {
				source(socket).CopyTo(socket.Index, s.inputs[i], j)
			}
			node.Function.Call(ctx, s.inputs[i], s.outputs[i])
		}
		for i, output := range g.Outputs {
			source(output.Socket).CopyTo(output.Index, out, i)
		}
	}
}

func (g *Graph) lowerableToIR() bool {
	for _, param := range g.Inputs {
		if param.Type != types.Float {
			return false
		}
	}
	for _, node := range g.Nodes {
		sig := node.Function.Signature()
		if !node.Function.Supports(fn.BuildIR) ||
			!sig.AllInputs(types.Float) ||
			!sig.AllOutputs(types.Float) {
			return false
		}
	}
	return true
}

// buildIR inlines every node body into one function.
func (g *Graph) buildIR(builder *ir.Builder, inputs []ir.Value, outputs []ir.Value) []ir.Value {
	values := make([][]ir.Value, len(g.Nodes))
	source := func(socket Socket) ir.Value {
		if socket.Node == GraphInput {
			return inputs[socket.Index]
		}
		return values[socket.Node][socket.Index]
	}
	for i, node := range g.Nodes {
		body, _ := node.Function.IRBody()
		args := make([]ir.Value, len(node.Inputs))
		for j, socket := range node.Inputs {
			args[j] = source(socket)
		}
		values[i] = body.BuildIR(builder, args, nil)
		if n := node.Function.Signature().NumOutputs(); len(values[i]) != n {
			panic(fmt.Errorf("%s: node %d (%s) produced %d values, expecting %d",
				g.Name, i, node.Function.Name(), len(values[i]), n))
		}
	}
	for _, output := range g.Outputs {
		outputs = append(outputs, source(output.Socket))
	}
	return outputs
}
