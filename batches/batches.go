package batches

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/syncs"
	"golang.org/x/sync/errgroup"
)

// Item is one bytecode invocation. Args and Results follow bvm.EvalContext.EvalFunction.
type Item struct {
	Args    []any
	Results []any
	Data    *bvm.EvalData
}

// Config is shared read-only by every item of a batch.
type Config struct {
	Function    *bvm.Function
	Globals     *bvm.EvalGlobals
	EvalContext *bvm.EvalContext
	// Parallelism bounds concurrent evaluations, GOMAXPROCS when not positive.
	Parallelism int
}

// Run evaluates items concurrently. Each in-flight evaluation has its own stack.
func Run(ctx context.Context, cfg Config, items []Item) error {
	evalCtx := cfg.EvalContext
	if evalCtx == nil {
		evalCtx = bvm.NewEvalContext()
	}
	return forEach(ctx, cfg.Parallelism, len(items), func(i int) error {
		item := items[i]
		evalCtx.EvalFunction(cfg.Globals, item.Data, cfg.Function, item.Args, item.Results)
		return nil
	})
}

// Call evaluates one shared function over many input tuples. outputs[i] receives the
// results of inputs[i]. jit may be nil.
func Call(ctx context.Context, parallelism int, jit *fn.JIT, f *fn.Function, inputs, outputs []*fn.Tuple) error {
	if len(inputs) != len(outputs) {
		panic(fmt.Errorf("%d inputs, %d outputs", len(inputs), len(outputs)))
	}
	return forEach(ctx, parallelism, len(inputs), func(i int) error {
		if err := fn.Evaluate(ctx, jit, f, inputs[i], outputs[i]); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		return nil
	})
}

func forEach(ctx context.Context, parallelism int, n int, do func(i int) error) error {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	sem := syncs.NewSemaphore(parallelism)
	group, groupCtx := errgroup.WithContext(ctx)

	var panicOnce sync.Once
	var panicValue any

	for i := range n {
		if err := sem.AcquireContext(groupCtx); err != nil {
			break
		}
		group.Go(func() (err error) {
			defer sem.Release()
			defer func() {
				if p := recover(); p != nil {
					panicOnce.Do(func() {
						panicValue = p
					})
					err = fmt.Errorf("item %d panicked", i)
				}
			}()
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return do(i)
		})
	}

	err := group.Wait()
	// contract violations in workers are re-raised on the caller's goroutine
	if panicValue != nil {
		panic(panicValue)
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}
