package debugs

import (
	"fmt"
	"strings"

	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/exprs"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
	"go.starlark.net/starlark"
)

// evalBuiltin compiles and evaluates an expression in the REPL.
// Keyword arguments become parameters: numbers are float, 3-tuples are float3.
//
//	eval("r = x * 2", x=3)
var evalBuiltin = starlark.NewBuiltin("eval", func(
	thread *starlark.Thread,
	b *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	var source string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, nil, 1, &source); err != nil {
		return nil, err
	}

	params := make([]fn.Parameter, 0, len(kwargs))
	values := make([]any, 0, len(kwargs))
	for _, kv := range kwargs {
		name := string(kv[0].(starlark.String))
		param, value, err := fromStarlarkArgument(name, kv[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		params = append(params, param)
		values = append(values, value)
	}

	f, err := exprs.Compile("repl", strings.NewReader(source), params...)
	if err != nil {
		return nil, err
	}

	results := make([]any, len(f.Returns))
	for i, ret := range f.Returns {
		switch ret.Type {
		case types.Float:
			results[i] = new(float32)
		case types.Int32:
			results[i] = new(int32)
		case types.Float3:
			results[i] = new(types.Vec3)
		}
	}
	bvm.NewEvalContext().EvalFunction(nil, nil, f, values, results)

	ret := starlark.NewDict(len(results))
	for i, r := range f.Returns {
		if err := ret.SetKey(starlark.String(r.Name), toStarlarkValue(results[i])); err != nil {
			return nil, err
		}
	}
	return ret, nil
})

func fromStarlarkArgument(name string, v starlark.Value) (fn.Parameter, any, error) {
	if f, ok := starlark.AsFloat(v); ok {
		value := float32(f)
		return fn.Param(name, types.Float), &value, nil
	}
	if tuple, ok := v.(starlark.Tuple); ok && len(tuple) == 3 {
		var value types.Vec3
		for i, elem := range tuple {
			f, ok := starlark.AsFloat(elem)
			if !ok {
				return fn.Parameter{}, nil, fmt.Errorf("%s: element %d is %s", name, i, elem.Type())
			}
			value[i] = float32(f)
		}
		return fn.Param(name, types.Float3), &value, nil
	}
	return fn.Parameter{}, nil, fmt.Errorf("%s: unsupported argument type %s", name, v.Type())
}
