package fnvmconfigs

import (
	"runtime"

	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/configs"
	"github.com/reusee/fnvm/vars"
)

// Parallelism bounds concurrent evaluations of a batch.
type Parallelism int

var parallelFlag = cmds.Var[int]("-parallel", "maximum concurrent evaluations")

func (Module) Parallelism(
	loader configs.Loader,
) Parallelism {
	return Parallelism(vars.FirstNonZero(
		*parallelFlag,
		configs.First[int](loader, "parallelism"),
		runtime.GOMAXPROCS(0),
	))
}
