package ir

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

type EngineConfig struct {
	// Interpreter selects the wazero interpreter instead of the native compiler
	Interpreter bool
}

// Engine compiles IR modules to machine code.
type Engine struct {
	runtime wazero.Runtime
}

func NewEngine(ctx context.Context, config EngineConfig) *Engine {
	var runtimeConfig wazero.RuntimeConfig
	if config.Interpreter {
		runtimeConfig = wazero.NewRuntimeConfigInterpreter()
	} else {
		runtimeConfig = wazero.NewRuntimeConfig()
	}
	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeConfig),
	}
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

func (e *Engine) Compile(ctx context.Context, module *Module) (*Compiled, error) {
	bin, err := module.Encode()
	if err != nil {
		return nil, wrap(err)
	}
	compiled, err := e.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, wrap(err)
	}
	instance, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, wrap(err)
	}

	ret := &Compiled{
		module:    instance,
		functions: make(map[string]*compiledFunc),
	}
	for _, fn := range module.funcs {
		name := fn.name
		ret.functions[name] = &compiledFunc{
			numParams:  fn.numParams,
			numResults: len(fn.results),
			// api.Function is not safe for concurrent calls
			handles: sync.Pool{
				New: func() any {
					return instance.ExportedFunction(name)
				},
			},
		}
	}
	return ret, nil
}

// Compiled is executable code of a Module. Call is safe for concurrent use.
type Compiled struct {
	module    api.Module
	functions map[string]*compiledFunc
}

type compiledFunc struct {
	numParams  int
	numResults int
	handles    sync.Pool
}

func (c *Compiled) Call(ctx context.Context, name string, args ...float32) ([]float32, error) {
	fn, ok := c.functions[name]
	if !ok {
		return nil, fmt.Errorf("no such function: %s", name)
	}
	if len(args) != fn.numParams {
		return nil, fmt.Errorf("function %s: expecting %d arguments, got %d", name, fn.numParams, len(args))
	}

	params := make([]uint64, len(args))
	for i, arg := range args {
		params[i] = api.EncodeF32(arg)
	}

	handle := fn.handles.Get().(api.Function)
	defer fn.handles.Put(handle)
	rets, err := handle.Call(ctx, params...)
	if err != nil {
		return nil, wrap(err)
	}

	results := make([]float32, len(rets))
	for i, ret := range rets {
		results[i] = api.DecodeF32(ret)
	}
	return results, nil
}

func (c *Compiled) Close(ctx context.Context) error {
	return c.module.Close(ctx)
}
