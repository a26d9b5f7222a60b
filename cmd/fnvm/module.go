package main

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/fnvm/debugs"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/fnvmconfigs"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/logs"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs fnvmconfigs.Module
	Debugs  debugs.Module
}

func (Module) Engine(
	interpreter fnvmconfigs.IRInterpreter,
) *ir.Engine {
	return ir.NewEngine(context.Background(), ir.EngineConfig{
		Interpreter: bool(interpreter),
	})
}

func (Module) JIT(
	engine *ir.Engine,
) *fn.JIT {
	return fn.NewJIT(engine)
}
