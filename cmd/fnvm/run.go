package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reusee/fnvm/batches"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/fnvmconfigs"
	"github.com/reusee/fnvm/graphs"
	"github.com/reusee/fnvm/logs"
	"github.com/reusee/fnvm/types"
)

// RunGraph evaluates g once per input tuple on the configured backend.
type RunGraph func(ctx context.Context, g *graphs.Graph, inputs []*fn.Tuple) ([]*fn.Tuple, error)

func (Module) RunGraph(
	backend fnvmconfigs.Backend,
	parallelism fnvmconfigs.Parallelism,
	jit *fn.JIT,
	logger logs.Logger,
	newSpan logs.NewSpan,
) RunGraph {
	return func(ctx context.Context, g *graphs.Graph, inputs []*fn.Tuple) (_ []*fn.Tuple, err error) {
		ctx, _ = newSpan(ctx, "run graph")
		ctx = logs.WithAttrs(ctx,
			slog.String("graph", g.Name),
			slog.String("backend", string(backend)),
		)
		defer func() {
			if err != nil {
				err = logs.WrapSpan(ctx, wrap(err))
			}
		}()
		logger.DebugContext(ctx, "run graph",
			"items", len(inputs),
		)

		if err := g.Validate(); err != nil {
			return nil, err
		}
		sig := g.Signature()
		outputs := make([]*fn.Tuple, len(inputs))
		for i := range outputs {
			outputs[i] = sig.NewOutputs()
		}

		switch backend {

		case fnvmconfigs.BackendInterp, fnvmconfigs.BackendIR:
			f, err := g.Function()
			if err != nil {
				return nil, err
			}
			var j *fn.JIT
			if backend == fnvmconfigs.BackendIR {
				j = jit
			}
			if err := batches.Call(ctx, int(parallelism), j, f, inputs, outputs); err != nil {
				return nil, err
			}

		case fnvmconfigs.BackendBVM:
			f, err := graphs.CompileBVM(g)
			if err != nil {
				return nil, err
			}
			items := make([]batches.Item, len(inputs))
			for i := range items {
				items[i] = batches.Item{
					Args:    tuplePointers(inputs[i]),
					Results: tuplePointers(outputs[i]),
				}
			}
			if err := batches.Run(ctx, batches.Config{
				Function:    f,
				Parallelism: int(parallelism),
			}, items); err != nil {
				return nil, err
			}
			for i, item := range items {
				storePointers(outputs[i], item.Results)
			}

		default:
			return nil, fmt.Errorf("unknown backend: %s", backend)
		}

		logger.DebugContext(ctx, "graph evaluated")
		return outputs, nil
	}
}

// tuplePointers copies the slots of t into fresh pointers for bytecode evaluation.
func tuplePointers(t *fn.Tuple) []any {
	ret := make([]any, t.Len())
	for i := range ret {
		switch v := tupleValue(t, i).(type) {
		case float32:
			ret[i] = &v
		case int32:
			ret[i] = &v
		case types.Vec3:
			ret[i] = &v
		}
	}
	return ret
}

func storePointers(t *fn.Tuple, ptrs []any) {
	for i, ptr := range ptrs {
		switch ptr := ptr.(type) {
		case *float32:
			fn.Set(t, i, *ptr)
		case *int32:
			fn.Set(t, i, *ptr)
		case *types.Vec3:
			fn.Set(t, i, *ptr)
		}
	}
}

// singleNode wraps f in a graph that forwards every input and output.
func singleNode(f *fn.Function) *graphs.Graph {
	sig := f.Signature()
	node := graphs.Node{
		Function: f,
	}
	for i := range sig.NumInputs() {
		node.Inputs = append(node.Inputs, graphs.Socket{
			Node:  graphs.GraphInput,
			Index: i,
		})
	}
	g := &graphs.Graph{
		Name:   f.Name(),
		Inputs: sig.Inputs(),
		Nodes:  []graphs.Node{node},
	}
	for i, output := range sig.Outputs() {
		g.Outputs = append(g.Outputs, graphs.Output{
			Name: output.Name,
			Socket: graphs.Socket{
				Node:  0,
				Index: i,
			},
		})
	}
	return g
}
