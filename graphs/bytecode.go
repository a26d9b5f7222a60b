package graphs

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/reusee/fnvm/builtins"
	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
)

var bytecodeOps = sync.OnceValue(func() map[*fn.Function]bvm.OpCode {
	return map[*fn.Function]bvm.OpCode{
		builtins.AddFloats():      bvm.OpAddFloat,
		builtins.MultiplyFloats(): bvm.OpMulFloat,
		builtins.MinFloats():      bvm.OpMinFloat,
		builtins.MaxFloats():      bvm.OpMaxFloat,
		builtins.MapRange():       bvm.OpMapRange,
	}
})

// NodeEntryPoint is the entry point name of node i in compiled bytecode.
func NodeEntryPoint(i int) string {
	return "node." + strconv.Itoa(i)
}

// CompileBVM lowers a graph of built-in nodes to bytecode.
// Graph inputs become arguments, graph outputs become returns, and every node starts at
// its own entry point.
func CompileBVM(g *Graph) (*bvm.Function, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	ops := bytecodeOps()
	asm := bvm.NewAssembler(g.Name)

	inputs := make([]int, len(g.Inputs))
	for i, param := range g.Inputs {
		if param.Type != types.Float {
			return nil, fmt.Errorf("%s: input %s: %w: %v in bytecode", g.Name, param.Name, fn.ErrCapabilityUnsupported, param.Type)
		}
		inputs[i] = asm.Argument(param.Name, param.Type)
	}

	outputs := make([]int, len(g.Nodes))
	slot := func(socket Socket) int {
		if socket.Node == GraphInput {
			return inputs[socket.Index]
		}
		return outputs[socket.Node]
	}
	for i, node := range g.Nodes {
		op, ok := ops[node.Function]
		if !ok {
			return nil, fmt.Errorf("%s: node %d (%s): %w: no bytecode lowering",
				g.Name, i, node.Function.Name(), fn.ErrCapabilityUnsupported)
		}
		asm.EntryPoint(NodeEntryPoint(i))
		operands := make([]int, 0, len(node.Inputs)+1)
		for _, socket := range node.Inputs {
			operands = append(operands, slot(socket))
		}
		// every built-in has exactly one float output
		outputs[i] = asm.Alloc(types.Float)
		operands = append(operands, outputs[i])
		asm.Emit(op, operands...)
	}
	asm.Emit(bvm.OpEnd)

	for _, output := range g.Outputs {
		asm.Return(output.Name, types.Float, slot(output.Socket))
	}

	ret, err := asm.Function()
	if err != nil {
		return nil, wrap(err)
	}
	return ret, nil
}
