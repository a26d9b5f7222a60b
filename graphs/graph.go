package graphs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
)

var ErrInvalidGraph = errors.New("invalid graph")

// GraphInput is the Socket.Node value referring to the graph's own inputs.
const GraphInput = -1

// Socket addresses one value: an output of an earlier node, or a graph input.
type Socket struct {
	Node  int
	Index int
}

type Node struct {
	Function *fn.Function
	Inputs   []Socket
}

type Output struct {
	Name string
	Socket
}

// Graph wires shared functions together. Nodes are in evaluation order and only
// read from graph inputs or earlier nodes.
type Graph struct {
	Name    string
	Inputs  []fn.Parameter
	Outputs []Output
	Nodes   []Node
}

func (g *Graph) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidGraph, g.Name, fmt.Sprintf(format, args...))
}

func (g *Graph) Validate() error {
	names := make(map[string]bool)
	for _, param := range g.Inputs {
		if names[param.Name] {
			return g.invalid("duplicated input %s", param.Name)
		}
		names[param.Name] = true
		if !param.Type.Valid() {
			return g.invalid("input %s has invalid type", param.Name)
		}
	}

	for i, node := range g.Nodes {
		if node.Function == nil {
			return g.invalid("node %d has no function", i)
		}
		sig := node.Function.Signature()
		if len(node.Inputs) != sig.NumInputs() {
			return g.invalid("node %d (%s): %d inputs wired, signature has %d",
				i, node.Function.Name(), len(node.Inputs), sig.NumInputs())
		}
		for j, socket := range node.Inputs {
			typ, err := g.socketType(socket, i)
			if err != nil {
				return g.invalid("node %d (%s) input %s: %v", i, node.Function.Name(), sig.Input(j).Name, err)
			}
			if typ != sig.Input(j).Type {
				return g.invalid("node %d (%s) input %s: expecting %v, got %v",
					i, node.Function.Name(), sig.Input(j).Name, sig.Input(j).Type, typ)
			}
		}
	}

	names = make(map[string]bool)
	for _, output := range g.Outputs {
		if names[output.Name] {
			return g.invalid("duplicated output %s", output.Name)
		}
		names[output.Name] = true
		if _, err := g.socketType(output.Socket, len(g.Nodes)); err != nil {
			return g.invalid("output %s: %v", output.Name, err)
		}
	}

	return nil
}

// socketType resolves the type of a socket read by node number reader.
func (g *Graph) socketType(socket Socket, reader int) (types.Type, error) {
	if socket.Node == GraphInput {
		if socket.Index < 0 || socket.Index >= len(g.Inputs) {
			return types.Invalid, fmt.Errorf("no graph input %d", socket.Index)
		}
		return g.Inputs[socket.Index].Type, nil
	}
	if socket.Node < 0 || socket.Node >= reader {
		return types.Invalid, fmt.Errorf("node %d is not evaluated before", socket.Node)
	}
	sig := g.Nodes[socket.Node].Function.Signature()
	if socket.Index < 0 || socket.Index >= sig.NumOutputs() {
		return types.Invalid, fmt.Errorf("node %d has no output %d", socket.Node, socket.Index)
	}
	return sig.Output(socket.Index).Type, nil
}

// Signature is the signature of the function the graph computes. The graph must be valid.
func (g *Graph) Signature() fn.Signature {
	outputs := make([]fn.Parameter, 0, len(g.Outputs))
	for _, output := range g.Outputs {
		typ, err := g.socketType(output.Socket, len(g.Nodes))
		if err != nil {
			panic(err)
		}
		outputs = append(outputs, fn.Param(output.Name, typ))
	}
	return fn.NewSignature(g.Inputs, outputs)
}

func (g *Graph) clone() *Graph {
	ret := &Graph{
		Name:    g.Name,
		Inputs:  slices.Clone(g.Inputs),
		Outputs: slices.Clone(g.Outputs),
		Nodes:   slices.Clone(g.Nodes),
	}
	for i := range ret.Nodes {
		ret.Nodes[i].Inputs = slices.Clone(ret.Nodes[i].Inputs)
	}
	return ret
}
