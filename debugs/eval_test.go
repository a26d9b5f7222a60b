package debugs

import (
	"testing"

	"go.starlark.net/starlark"
)

func runStarlark(t *testing.T, src string) starlark.StringDict {
	t.Helper()
	thread := &starlark.Thread{Name: "test"}
	globals, err := starlark.ExecFile(thread, "test.star", src, starlark.StringDict{
		"eval": evalBuiltin,
	})
	if err != nil {
		t.Fatal(err)
	}
	return globals
}

func TestEvalBuiltin(t *testing.T) {
	globals := runStarlark(t, `
res = eval("r = x * 2 + 1\nv = vec3(x, 0, 1) + d", x = 3, d = (1, 2, 3))
r = res["r"]
v = res["v"]
`)
	if r, ok := starlark.AsFloat(globals["r"]); !ok || r != 7 {
		t.Fatalf("got %v", globals["r"])
	}
	equal, err := starlark.Equal(globals["v"], starlark.Tuple{
		starlark.Float(4), starlark.Float(2), starlark.Float(4),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Fatalf("got %v", globals["v"])
	}
}

func TestEvalBuiltinErrors(t *testing.T) {
	for _, src := range []string{
		`eval("r = y")`,
		`eval("r = x", x = "foo")`,
		`eval("r = x", x = (1, 2))`,
		`eval()`,
	} {
		thread := &starlark.Thread{Name: "test"}
		_, err := starlark.ExecFile(thread, "test.star", src, starlark.StringDict{
			"eval": evalBuiltin,
		})
		if err == nil {
			t.Fatalf("expecting error: %s", src)
		}
	}
}
