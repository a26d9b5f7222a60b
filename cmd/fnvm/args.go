package main

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
)

// row maps argument names to their textual values.
type row map[string]string

func parseRow(specs []string) (row, error) {
	ret := make(row, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("bad argument %q, expecting name=value", spec)
		}
		ret[name] = strings.TrimSpace(value)
	}
	return ret, nil
}

// readRows reads one row per non-empty line of r. Fields are separated by spaces and
// override defaults.
func readRows(r io.Reader, defaults row) (ret []row, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields, err := parseRow(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(ret)+1, err)
		}
		merged := maps.Clone(defaults)
		if merged == nil {
			merged = make(row)
		}
		maps.Copy(merged, fields)
		ret = append(ret, merged)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func parseValue(typ types.Type, str string) (any, error) {
	switch typ {
	case types.Float:
		v, err := strconv.ParseFloat(str, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	case types.Int32:
		v, err := strconv.ParseInt(str, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	case types.Float3:
		parts := strings.Split(str, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("expecting 3 comma separated floats, got %q", str)
		}
		var ret types.Vec3
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
			if err != nil {
				return nil, err
			}
			ret[i] = float32(v)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported type %v", typ)
}

// inferParams derives expression parameters from a row: comma separated values are float3,
// others are float.
func inferParams(r row) []fn.Parameter {
	names := slices.Sorted(maps.Keys(r))
	ret := make([]fn.Parameter, 0, len(names))
	for _, name := range names {
		typ := types.Float
		if strings.Contains(r[name], ",") {
			typ = types.Float3
		}
		ret = append(ret, fn.Param(name, typ))
	}
	return ret
}

func toTuple(sig fn.Signature, r row) (*fn.Tuple, error) {
	for name := range r {
		if sig.InputIndex(name) < 0 {
			return nil, fmt.Errorf("unknown argument %s", name)
		}
	}
	ret := sig.NewInputs()
	for i, param := range sig.Inputs() {
		str, ok := r[param.Name]
		if !ok {
			return nil, fmt.Errorf("missing argument %s", param.Name)
		}
		value, err := parseValue(param.Type, str)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", param.Name, err)
		}
		switch value := value.(type) {
		case float32:
			fn.Set(ret, i, value)
		case int32:
			fn.Set(ret, i, value)
		case types.Vec3:
			fn.Set(ret, i, value)
		}
	}
	return ret, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case types.Vec3:
		return formatValue(v[0]) + "," + formatValue(v[1]) + "," + formatValue(v[2])
	}
	return fmt.Sprint(v)
}

func tupleValue(t *fn.Tuple, i int) any {
	switch t.Type(i) {
	case types.Float:
		return fn.Get[float32](t, i)
	case types.Int32:
		return fn.Get[int32](t, i)
	case types.Float3:
		return fn.Get[types.Vec3](t, i)
	}
	panic(fmt.Errorf("bad tuple slot type: %v", t.Type(i)))
}

func writeTuple(w io.Writer, params []fn.Parameter, t *fn.Tuple) error {
	var b strings.Builder
	for i, param := range params {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(param.Name)
		b.WriteByte('=')
		b.WriteString(formatValue(tupleValue(t, i)))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
