package fn

import (
	"fmt"
	"slices"

	"github.com/reusee/fnvm/types"
)

type Parameter struct {
	Name string
	Type types.Type
}

func Param(name string, typ types.Type) Parameter {
	return Parameter{
		Name: name,
		Type: typ,
	}
}

// Signature is the ordered input and output contract of a function.
type Signature struct {
	inputs     []Parameter
	outputs    []Parameter
	inputMeta  *TupleMeta
	outputMeta *TupleMeta
}

func NewSignature(inputs []Parameter, outputs []Parameter) Signature {
	checkParams("input", inputs)
	checkParams("output", outputs)
	return Signature{
		inputs:     slices.Clone(inputs),
		outputs:    slices.Clone(outputs),
		inputMeta:  newTupleMeta(inputs),
		outputMeta: newTupleMeta(outputs),
	}
}

func checkParams(what string, params []Parameter) {
	seen := make(map[string]bool, len(params))
	for _, param := range params {
		if seen[param.Name] {
			panic(fmt.Errorf("duplicated %s parameter %q", what, param.Name))
		}
		seen[param.Name] = true
		if !param.Type.Valid() {
			panic(fmt.Errorf("%s parameter %q has invalid type", what, param.Name))
		}
	}
}

func (s Signature) Inputs() []Parameter {
	return slices.Clone(s.inputs)
}

func (s Signature) Outputs() []Parameter {
	return slices.Clone(s.outputs)
}

func (s Signature) NumInputs() int {
	return len(s.inputs)
}

func (s Signature) NumOutputs() int {
	return len(s.outputs)
}

func (s Signature) Input(i int) Parameter {
	return s.inputs[i]
}

func (s Signature) Output(i int) Parameter {
	return s.outputs[i]
}

// InputIndex returns the position of the named input, or -1.
func (s Signature) InputIndex(name string) int {
	return slices.IndexFunc(s.inputs, func(p Parameter) bool {
		return p.Name == name
	})
}

func (s Signature) OutputIndex(name string) int {
	return slices.IndexFunc(s.outputs, func(p Parameter) bool {
		return p.Name == name
	})
}

func (s Signature) NewInputs() *Tuple {
	return s.inputMeta.New()
}

func (s Signature) NewOutputs() *Tuple {
	return s.outputMeta.New()
}

// AllInputs reports whether every input is of type typ.
func (s Signature) AllInputs(typ types.Type) bool {
	for _, p := range s.inputs {
		if p.Type != typ {
			return false
		}
	}
	return true
}

func (s Signature) AllOutputs(typ types.Type) bool {
	for _, p := range s.outputs {
		if p.Type != typ {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	return fmt.Sprintf("%v -> %v", s.inputs, s.outputs)
}
