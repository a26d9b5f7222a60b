package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
)

func TestParseRow(t *testing.T) {
	r, err := parseRow([]string{"x=1", " y = 1,2,3 "})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, row{"x": "1", "y": "1,2,3"}) {
		t.Fatalf("got %v", r)
	}

	for _, spec := range []string{"x", "=1"} {
		if _, err := parseRow([]string{spec}); err == nil {
			t.Fatalf("expecting error: %s", spec)
		}
	}
}

func TestReadRows(t *testing.T) {
	rows, err := readRows(strings.NewReader(`
x=1 y=2
# comment

x=3
`), row{"y": "0", "z": "5"})
	if err != nil {
		t.Fatal(err)
	}
	expected := []row{
		{"x": "1", "y": "2", "z": "5"},
		{"x": "3", "y": "0", "z": "5"},
	}
	if !reflect.DeepEqual(rows, expected) {
		t.Fatalf("got %v", rows)
	}

	if _, err := readRows(strings.NewReader("x"), nil); err == nil {
		t.Fatal("expecting error")
	}
}

func TestParseValue(t *testing.T) {
	v, err := parseValue(types.Float, "1.5")
	if err != nil || v != float32(1.5) {
		t.Fatalf("got %v %v", v, err)
	}
	v, err = parseValue(types.Int32, "-3")
	if err != nil || v != int32(-3) {
		t.Fatalf("got %v %v", v, err)
	}
	v, err = parseValue(types.Float3, "1, 2,3")
	if err != nil || v != (types.Vec3{1, 2, 3}) {
		t.Fatalf("got %v %v", v, err)
	}

	for _, c := range []struct {
		typ types.Type
		str string
	}{
		{types.Float, "foo"},
		{types.Int32, "1.5"},
		{types.Int32, "99999999999"},
		{types.Float3, "1,2"},
		{types.Float3, "1,2,x"},
		{types.Invalid, "1"},
	} {
		if _, err := parseValue(c.typ, c.str); err == nil {
			t.Fatalf("expecting error: %v %s", c.typ, c.str)
		}
	}
}

func TestInferParams(t *testing.T) {
	params := inferParams(row{"b": "1,2,3", "a": "1"})
	expected := []fn.Parameter{
		fn.Param("a", types.Float),
		fn.Param("b", types.Float3),
	}
	if !reflect.DeepEqual(params, expected) {
		t.Fatalf("got %v", params)
	}
}

func TestToTuple(t *testing.T) {
	sig := fn.NewSignature([]fn.Parameter{
		fn.Param("x", types.Float),
		fn.Param("n", types.Int32),
		fn.Param("v", types.Float3),
	}, []fn.Parameter{
		fn.Param("r", types.Float),
	})

	tuple, err := toTuple(sig, row{"x": "0.5", "n": "2", "v": "1,2,3"})
	if err != nil {
		t.Fatal(err)
	}
	if fn.Get[float32](tuple, 0) != 0.5 {
		t.Fatal()
	}
	if fn.Get[int32](tuple, 1) != 2 {
		t.Fatal()
	}
	if fn.Get[types.Vec3](tuple, 2) != (types.Vec3{1, 2, 3}) {
		t.Fatal()
	}

	for _, r := range []row{
		{"x": "0.5", "n": "2"},
		{"x": "0.5", "n": "2", "v": "1,2,3", "w": "1"},
		{"x": "0.5", "n": "foo", "v": "1,2,3"},
	} {
		if _, err := toTuple(sig, r); err == nil {
			t.Fatalf("expecting error: %v", r)
		}
	}
}

func TestWriteTuple(t *testing.T) {
	sig := fn.NewSignature(nil, []fn.Parameter{
		fn.Param("a", types.Float),
		fn.Param("b", types.Int32),
		fn.Param("c", types.Float3),
	})
	tuple := sig.NewOutputs()
	fn.Set[float32](tuple, 0, 0.25)
	fn.Set[int32](tuple, 1, 7)
	fn.Set(tuple, 2, types.Vec3{1, -2, 3.5})

	buf := new(bytes.Buffer)
	if err := writeTuple(buf, sig.Outputs(), tuple); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a=0.25 b=7 c=1,-2,3.5\n" {
		t.Fatalf("got %q", got)
	}
}
