package graphs

import (
	"fmt"
	"io"
	"strings"

	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
	"gopkg.in/yaml.v3"
)

type graphFile struct {
	Name    string       `yaml:"name"`
	Inputs  []paramFile  `yaml:"inputs"`
	Nodes   []nodeFile   `yaml:"nodes"`
	Outputs []outputFile `yaml:"outputs"`
}

type paramFile struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type nodeFile struct {
	ID       string            `yaml:"id"`
	Function string            `yaml:"function"`
	Inputs   map[string]string `yaml:"inputs"`
}

type outputFile struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
}

// LookupFunc resolves a function name used in a graph file.
type LookupFunc func(name string) (*fn.Function, bool)

// Decode reads a YAML graph description.
// Sockets are written "input.<name>" for graph inputs or "<node id>.<output name>".
func Decode(r io.Reader, lookup LookupFunc) (*Graph, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var file graphFile
	if err := decoder.Decode(&file); err != nil {
		return nil, wrap(err)
	}

	g := &Graph{
		Name: file.Name,
	}
	inputIndex := make(map[string]int)
	for _, param := range file.Inputs {
		typ := types.Float
		if param.Type != "" {
			var err error
			typ, err = types.Parse(param.Type)
			if err != nil {
				return nil, g.invalid("input %s: %v", param.Name, err)
			}
		}
		if _, ok := inputIndex[param.Name]; ok {
			return nil, g.invalid("duplicated input %s", param.Name)
		}
		inputIndex[param.Name] = len(g.Inputs)
		g.Inputs = append(g.Inputs, fn.Param(param.Name, typ))
	}

	nodeIndex := make(map[string]int)
	parseSocket := func(spec string) (Socket, error) {
		id, name, ok := strings.Cut(spec, ".")
		if !ok {
			return Socket{}, fmt.Errorf("bad socket %q", spec)
		}
		if id == "input" {
			index, ok := inputIndex[name]
			if !ok {
				return Socket{}, fmt.Errorf("no graph input %q", name)
			}
			return Socket{Node: GraphInput, Index: index}, nil
		}
		node, ok := nodeIndex[id]
		if !ok {
			return Socket{}, fmt.Errorf("unknown node %q", id)
		}
		index := g.Nodes[node].Function.Signature().OutputIndex(name)
		if index < 0 {
			return Socket{}, fmt.Errorf("node %q has no output %q", id, name)
		}
		return Socket{Node: node, Index: index}, nil
	}

	for _, n := range file.Nodes {
		if n.ID == "" || n.ID == "input" || strings.Contains(n.ID, ".") {
			return nil, g.invalid("bad node id %q", n.ID)
		}
		if _, ok := nodeIndex[n.ID]; ok {
			return nil, g.invalid("duplicated node %s", n.ID)
		}
		function, ok := lookup(n.Function)
		if !ok {
			return nil, g.invalid("node %s: unknown function %q", n.ID, n.Function)
		}
		sig := function.Signature()
		node := Node{
			Function: function,
			Inputs:   make([]Socket, sig.NumInputs()),
		}
		for name := range n.Inputs {
			if sig.InputIndex(name) < 0 {
				return nil, g.invalid("node %s: %s has no input %q", n.ID, n.Function, name)
			}
		}
		for i, param := range sig.Inputs() {
			spec, ok := n.Inputs[param.Name]
			if !ok {
				return nil, g.invalid("node %s: input %s is not connected", n.ID, param.Name)
			}
			socket, err := parseSocket(spec)
			if err != nil {
				return nil, g.invalid("node %s input %s: %v", n.ID, param.Name, err)
			}
			node.Inputs[i] = socket
		}
		nodeIndex[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, node)
	}

	for _, output := range file.Outputs {
		socket, err := parseSocket(output.From)
		if err != nil {
			return nil, g.invalid("output %s: %v", output.Name, err)
		}
		g.Outputs = append(g.Outputs, Output{
			Name:   output.Name,
			Socket: socket,
		})
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
