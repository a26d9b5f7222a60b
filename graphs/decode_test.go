package graphs

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/reusee/fnvm/builtins"
)

const testGraphYAML = `
name: test
inputs:
  - name: x
    type: float
  - name: y
nodes:
  - id: sum
    function: Add Floats
    inputs:
      A: input.x
      B: input.y
  - id: prod
    function: Multiply Floats
    inputs:
      A: sum.Result
      B: input.y
  - id: lo
    function: Minimum
    inputs:
      A: prod.Result
      B: input.x
  - id: mapped
    function: Map Range
    inputs:
      Value: prod.Result
      From Min: input.x
      From Max: input.y
      To Min: sum.Result
      To Max: lo.Result
outputs:
  - name: prod
    from: prod.Result
  - name: min
    from: lo.Result
  - name: mapped
    from: mapped.Value
  - name: x
    from: input.x
`

func TestDecode(t *testing.T) {
	g, err := Decode(strings.NewReader(testGraphYAML), builtins.Lookup)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g, testGraph()) {
		t.Fatalf("got %+v", g)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown function", `
name: g
nodes:
  - id: a
    function: Subtract
`, `unknown function "Subtract"`},
		{"unconnected input", `
name: g
inputs: [{name: x}]
nodes:
  - id: a
    function: Add Floats
    inputs: {A: input.x}
`, "input B is not connected"},
		{"unknown input name", `
name: g
inputs: [{name: x}]
nodes:
  - id: a
    function: Add Floats
    inputs: {A: input.x, B: input.x, C: input.x}
`, `has no input "C"`},
		{"unknown node", `
name: g
inputs: [{name: x}]
nodes:
  - id: a
    function: Add Floats
    inputs: {A: input.x, B: b.Result}
`, `unknown node "b"`},
		{"unknown output", `
name: g
inputs: [{name: x}]
nodes:
  - id: a
    function: Add Floats
    inputs: {A: input.x, B: input.x}
outputs:
  - name: out
    from: a.Value
`, `node "a" has no output "Value"`},
		{"bad socket", `
name: g
outputs:
  - name: out
    from: x
`, `bad socket "x"`},
		{"missing graph input", `
name: g
outputs:
  - name: out
    from: input.x
`, `no graph input "x"`},
		{"duplicated node", `
name: g
inputs: [{name: x}]
nodes:
  - {id: a, function: Add Floats, inputs: {A: input.x, B: input.x}}
  - {id: a, function: Add Floats, inputs: {A: input.x, B: input.x}}
`, "duplicated node a"},
		{"reserved id", `
name: g
nodes:
  - {id: input, function: Add Floats}
`, `bad node id "input"`},
		{"bad type", `
name: g
inputs: [{name: x, type: double}]
`, "unknown type: double"},
		{"type mismatch", `
name: g
inputs: [{name: x, type: int}]
nodes:
  - {id: a, function: Add Floats, inputs: {A: input.x, B: input.x}}
`, "expecting float, got int"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(c.src), builtins.Lookup)
			if !errors.Is(err, ErrInvalidGraph) {
				t.Fatalf("got %v", err)
			}
			if !strings.Contains(err.Error(), c.msg) {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("name: g\nedges: []\n"), builtins.Lookup)
	if err == nil {
		t.Fatal("expecting error")
	}
}
