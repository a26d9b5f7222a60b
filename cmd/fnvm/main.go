package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/reusee/dscope"
	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/configs"
	"github.com/reusee/fnvm/fnvmconfigs"
	"github.com/reusee/fnvm/ir"
	"github.com/reusee/fnvm/logs"
	"github.com/reusee/fnvm/modes"
)

var devMode = cmds.Switch("-dev", "run in development mode with debug logs")

// action is set by the command given on the command line and called with the program scope.
var action any

func setAction(fn any) {
	if action != nil {
		panic(fmt.Errorf("only one command may be given"))
	}
	action = fn
}

func main() {
	cmds.Execute(os.Args[1:])
	if action == nil {
		cmds.GlobalExecutor.PrintUsage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mode := modes.ModeProduction
	if *devMode {
		mode = modes.ModeDevelopment
	}
	scope := dscope.New(
		new(Module),
		modes.For(mode),
	).Fork(
		func() context.Context {
			return ctx
		},
	)
	if mode == modes.ModeProduction {
		// configured level, development mode always logs debug
		scope = scope.Fork(
			func(level fnvmconfigs.LogLevel) logs.DefaultLevel {
				return logs.DefaultLevel(slog.Level(level))
			},
		)
	}

	scope.Call(func(
		logger logs.Logger,
		loader configs.Loader,
	) {
		if paths := loader.Paths(); len(paths) > 0 {
			logger.InfoContext(ctx, "config files", "paths", paths)
		}
	})

	scope.Call(action)

	scope.Call(func(
		engine *ir.Engine,
	) {
		check(engine.Close(context.WithoutCancel(ctx)))
	})
}
