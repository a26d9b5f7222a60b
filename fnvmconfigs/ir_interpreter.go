package fnvmconfigs

import (
	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/configs"
)

// IRInterpreter makes the compiled backend interpret instead of compiling to machine code.
type IRInterpreter bool

var irInterpreterFlag = cmds.Switch("-ir-interpreter", "interpret compiled code instead of compiling to machine code")

func (Module) IRInterpreter(
	loader configs.Loader,
) IRInterpreter {
	return IRInterpreter(*irInterpreterFlag || configs.First[bool](loader, "ir_interpreter"))
}
