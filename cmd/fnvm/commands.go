package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reusee/fnvm/batches"
	"github.com/reusee/fnvm/builtins"
	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/debugs"
	"github.com/reusee/fnvm/exprs"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/fnvmconfigs"
	"github.com/reusee/fnvm/graphs"
	"github.com/reusee/fnvm/logs"
	"github.com/reusee/fnvm/types"
)

var (
	tapResults  = cmds.Switch("-tap", "open a REPL over the results")
	disassemble = cmds.Switch("-disasm", "print bytecode instead of evaluating")
	savePath    = cmds.Var[string]("-save", "write bytecode to a file instead of evaluating")
)

func init() {

	cmds.Define("builtins", cmds.Func(func() {
		setAction(func() {
			for _, name := range builtins.Names() {
				f, _ := builtins.Lookup(name)
				fmt.Printf("%s\t%s\n", name, f.Signature())
			}
		})
	}).Desc("list built-in functions"))

	cmds.Define("call", cmds.Func(func(name string) {
		setAction(func(
			ctx context.Context,
			run RunGraph,
			tap debugs.Tap,
		) {
			f, ok := builtins.Lookup(name)
			if !ok {
				check(fmt.Errorf("unknown function: %s", name))
			}
			check(evalGraph(ctx, os.Stdout, singleNode(f), run, tap))
		})
	}).Desc("call a built-in function with -arg values"))

	cmds.Define("graph", cmds.Func(func(path string) {
		setAction(func(
			ctx context.Context,
			run RunGraph,
			tap debugs.Tap,
			logger logs.Logger,
			graphPaths fnvmconfigs.GraphPaths,
		) {
			resolved, err := graphPaths.Resolve(path)
			check(err)
			g, err := loadGraph(resolved)
			check(err)
			logger.InfoContext(ctx, "graph loaded",
				"name", g.Name,
				"nodes", len(g.Nodes),
			)
			if *disassemble || *savePath != "" {
				f, err := graphs.CompileBVM(g)
				check(err)
				check(emitBytecode(os.Stdout, f))
				return
			}
			check(evalGraph(ctx, os.Stdout, g, run, tap))
		})
	}).Desc("evaluate a graph file, searched in -graph-path directories"))

	cmds.Define("eval", cmds.Func(func(source string) {
		setAction(func(
			ctx context.Context,
			parallelism fnvmconfigs.Parallelism,
			tap debugs.Tap,
		) {
			rows, err := inputRows()
			check(err)
			f, err := exprs.Compile("eval", strings.NewReader(source), inferParams(rows[0])...)
			check(err)
			if *disassemble || *savePath != "" {
				check(emitBytecode(os.Stdout, f))
				return
			}
			check(evalBytecode(ctx, os.Stdout, f, int(parallelism), rows, tap))
		})
	}).Desc("compile and evaluate an expression with -arg values"))

	cmds.Define("load", cmds.Func(func(path string) {
		setAction(func(
			ctx context.Context,
			parallelism fnvmconfigs.Parallelism,
			tap debugs.Tap,
		) {
			file, err := os.Open(path)
			check(err)
			defer file.Close()
			f, err := bvm.Decode(file)
			check(err)
			rows, err := inputRows()
			check(err)
			check(evalBytecode(ctx, os.Stdout, f, int(parallelism), rows, tap))
		})
	}).Desc("evaluate a bytecode file written by -save"))

}

func loadGraph(path string) (*graphs.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, wrap(err)
	}
	defer file.Close()
	return graphs.Decode(file, builtins.Lookup)
}

// emitBytecode saves f when -save is given and prints its disassembly when -disasm is given.
func emitBytecode(w io.Writer, f *bvm.Function) error {
	if *savePath != "" {
		file, err := os.Create(*savePath)
		if err != nil {
			return wrap(err)
		}
		if err := bvm.Encode(file, f); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return wrap(err)
		}
	}
	if *disassemble {
		if _, err := io.WriteString(w, f.Disassemble()); err != nil {
			return wrap(err)
		}
	}
	return nil
}

func evalGraph(
	ctx context.Context,
	w io.Writer,
	g *graphs.Graph,
	run RunGraph,
	tap debugs.Tap,
) error {
	if err := g.Validate(); err != nil {
		return err
	}
	sig := g.Signature()

	rows, err := inputRows()
	if err != nil {
		return err
	}
	inputs := make([]*fn.Tuple, len(rows))
	for i, r := range rows {
		inputs[i], err = toTuple(sig, r)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	outputs, err := run(ctx, g, inputs)
	if err != nil {
		return err
	}
	for _, output := range outputs {
		if err := writeTuple(w, sig.Outputs(), output); err != nil {
			return wrap(err)
		}
	}

	if *tapResults {
		tap(ctx, g.Name, map[string]any{
			"signature": sig,
			"inputs":    inputs,
			"outputs":   outputs,
		})
	}
	return nil
}

func evalBytecode(
	ctx context.Context,
	w io.Writer,
	f *bvm.Function,
	parallelism int,
	rows []row,
	tap debugs.Tap,
) error {
	items := make([]batches.Item, len(rows))
	for i, r := range rows {
		args, err := bytecodeArgs(f, r)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		items[i] = batches.Item{
			Args:    args,
			Results: bytecodeResults(f),
		}
	}

	if err := batches.Run(ctx, batches.Config{
		Function:    f,
		Parallelism: parallelism,
	}, items); err != nil {
		return err
	}

	results := make([]map[string]any, len(items))
	for i, item := range items {
		var b strings.Builder
		results[i] = make(map[string]any, len(f.Returns))
		for j, ret := range f.Returns {
			if j > 0 {
				b.WriteByte(' ')
			}
			value := deref(item.Results[j])
			results[i][ret.Name] = value
			b.WriteString(ret.Name)
			b.WriteByte('=')
			b.WriteString(formatValue(value))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return wrap(err)
		}
	}

	if *tapResults {
		tap(ctx, f.Name, map[string]any{
			"function": f,
			"results":  results,
		})
	}
	return nil
}

func bytecodeArgs(f *bvm.Function, r row) ([]any, error) {
	known := make(map[string]bool, len(f.Arguments))
	ret := make([]any, len(f.Arguments))
	for i, arg := range f.Arguments {
		known[arg.Name] = true
		str, ok := r[arg.Name]
		if !ok {
			return nil, fmt.Errorf("missing argument %s", arg.Name)
		}
		value, err := parseValue(arg.Type, str)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg.Name, err)
		}
		switch value := value.(type) {
		case float32:
			ret[i] = &value
		case int32:
			ret[i] = &value
		case types.Vec3:
			ret[i] = &value
		}
	}
	for name := range r {
		if !known[name] {
			return nil, fmt.Errorf("unknown argument %s", name)
		}
	}
	return ret, nil
}

func bytecodeResults(f *bvm.Function) []any {
	ret := make([]any, len(f.Returns))
	for i, r := range f.Returns {
		switch r.Type {
		case types.Float:
			ret[i] = new(float32)
		case types.Int32:
			ret[i] = new(int32)
		case types.Float3:
			ret[i] = new(types.Vec3)
		}
	}
	return ret
}

func deref(ptr any) any {
	switch ptr := ptr.(type) {
	case *float32:
		return *ptr
	case *int32:
		return *ptr
	case *types.Vec3:
		return *ptr
	}
	return ptr
}
