package exprs

import (
	"io"

	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/fn"
	"go.starlark.net/syntax"
)

// Compile translates assignment statements into a bytecode function.
// params become the function arguments in order. Every assignment target gets an entry point
// of the same name; targets not starting with an underscore are returned in assignment order.
func Compile(name string, source io.Reader, params ...fn.Parameter) (*bvm.Function, error) {
	file, err := fileOptions.Parse(name, source, 0)
	if err != nil {
		return nil, err
	}

	c := newCompiler(name)
	for _, param := range params {
		if err := c.declareParam(param); err != nil {
			return nil, err
		}
	}
	if err := c.compileStmts(file.Stmts); err != nil {
		return nil, err
	}
	c.asm.Emit(bvm.OpEnd)

	for _, target := range c.targets {
		if target.name[0] == '_' {
			continue
		}
		c.asm.Return(target.name, target.typ, target.offset)
	}
	return c.asm.Function()
}

var fileOptions = &syntax.FileOptions{}
