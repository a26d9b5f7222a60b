package fnvmconfigs

import (
	"fmt"

	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/configs"
	"github.com/reusee/fnvm/vars"
)

// Backend selects how functions are executed.
type Backend string

const (
	// BackendInterp runs tuple-call bodies.
	BackendInterp Backend = "interp"
	// BackendIR runs compiled code, falling back to tuple-call bodies.
	BackendIR Backend = "ir"
	// BackendBVM lowers to bytecode.
	BackendBVM Backend = "bvm"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendInterp, BackendIR, BackendBVM:
		return true
	}
	return false
}

var backendFlag = cmds.Var[string]("-backend", "execution backend: interp, ir or bvm")

func (Module) Backend(
	loader configs.Loader,
) Backend {
	backend := Backend(vars.FirstNonZero(
		*backendFlag,
		configs.First[string](loader, "backend"),
		string(BackendIR),
	))
	if !backend.Valid() {
		panic(fmt.Errorf("unknown backend: %s", backend))
	}
	return backend
}
