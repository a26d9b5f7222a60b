package configs

import (
	"slices"
	"testing"
)

func TestLookup(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, testSchema)

	str, ok, err := Lookup[string](loader, "str")
	if err != nil || !ok || str != "bar" {
		t.Fatalf("got %q %v %v", str, ok, err)
	}

	list, ok, err := Lookup[[]int](loader, "missing")
	if err != nil || ok || list != nil {
		t.Fatalf("got %v %v %v", list, ok, err)
	}

	_, _, err = Lookup[int](loader, "str")
	if err == nil {
		t.Fatal("expecting decode error")
	}
}

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{
		"testdata/test2.cue",
		"testdata/test.cue",
	}, testSchema)
	if str := First[string](loader, "str"); str != "foo" {
		t.Fatalf("got %v", str)
	}
	if list := First[[]int](loader, "list"); !slices.Equal(list, []int{1, 2, 3}) {
		t.Fatalf("got %v", list)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("should panic")
			}
		}()
		First[string](NewLoader([]string{"testdata/bad.cue"}, testSchema), "str")
	}()
}

func TestAllStops(t *testing.T) {
	loader := NewLoader([]string{
		"testdata/test.cue",
		"testdata/test2.cue",
	}, testSchema)
	var strs []string
	for str := range All[string](loader, "str") {
		strs = append(strs, str)
		break
	}
	if !slices.Equal(strs, []string{"bar"}) {
		t.Fatalf("got %v", strs)
	}
}
