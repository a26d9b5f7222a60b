package exprs

import (
	"fmt"
	"math"
	"math/big"

	"github.com/reusee/fnvm/bvm"
	"github.com/reusee/fnvm/fn"
	"github.com/reusee/fnvm/types"
	"go.starlark.net/syntax"
)

type compiler struct {
	asm     *bvm.Assembler
	names   map[string]value
	targets []target
}

type value struct {
	typ    types.Type
	offset int
}

type target struct {
	name string
	value
}

func newCompiler(name string) *compiler {
	return &compiler{
		asm:   bvm.NewAssembler(name),
		names: make(map[string]value),
	}
}

func errorf(node syntax.Node, format string, args ...any) error {
	pos, _ := node.Span()
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

func (c *compiler) declareParam(param fn.Parameter) error {
	if _, ok := contextReads[param.Name]; ok {
		return fmt.Errorf("parameter %s shadows a context value", param.Name)
	}
	if _, ok := c.names[param.Name]; ok {
		return fmt.Errorf("duplicated parameter: %s", param.Name)
	}
	c.names[param.Name] = value{
		typ:    param.Type,
		offset: c.asm.Argument(param.Name, param.Type),
	}
	return nil
}

func (c *compiler) compileStmts(stmts []syntax.Stmt) error {
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileStmt(stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.AssignStmt:
		return c.compileAssign(s)
	default:
		return errorf(stmt, "unsupported statement type: %T", stmt)
	}
}

func (c *compiler) compileAssign(s *syntax.AssignStmt) error {
	if s.Op != syntax.EQ {
		return errorf(s, "unsupported assignment: %v", s.Op)
	}
	ident, ok := s.LHS.(*syntax.Ident)
	if !ok {
		return errorf(s.LHS, "unsupported assignment target: %T", s.LHS)
	}
	if _, ok := contextReads[ident.Name]; ok {
		return errorf(ident, "cannot assign to context value %s", ident.Name)
	}
	if _, ok := c.names[ident.Name]; ok {
		return errorf(ident, "%s is already defined", ident.Name)
	}

	c.asm.EntryPoint(ident.Name)
	v, err := c.compileExpr(s.RHS)
	if err != nil {
		return err
	}
	c.names[ident.Name] = v
	c.targets = append(c.targets, target{
		name:  ident.Name,
		value: v,
	})
	return nil
}

func (c *compiler) compileExpr(expr syntax.Expr) (value, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		return c.compileLiteral(e)
	case *syntax.Ident:
		return c.compileIdent(e)
	case *syntax.ParenExpr:
		return c.compileExpr(e.X)
	case *syntax.UnaryExpr:
		return c.compileUnaryExpr(e)
	case *syntax.BinaryExpr:
		return c.compileBinaryExpr(e)
	case *syntax.CondExpr:
		return c.compileCondExpr(e)
	case *syntax.CallExpr:
		return c.compileCallExpr(e)
	case *syntax.DotExpr:
		return c.compileDotExpr(e)
	default:
		return value{}, errorf(expr, "unsupported expression: %T", expr)
	}
}

func (c *compiler) alloc(typ types.Type) value {
	return value{
		typ:    typ,
		offset: c.asm.Alloc(typ),
	}
}

func (c *compiler) compileLiteral(e *syntax.Literal) (value, error) {
	switch v := e.Value.(type) {
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return value{}, errorf(e, "integer out of range: %d", v)
		}
		return value{typ: types.Int32, offset: c.asm.ValueInt(int32(v))}, nil
	case *big.Int:
		return value{}, errorf(e, "integer out of range: %v", v)
	case float64:
		return value{typ: types.Float, offset: c.asm.ValueFloat(float32(v))}, nil
	default:
		return value{}, errorf(e, "unsupported literal: %s", e.Raw)
	}
}

var contextReads = map[string]struct {
	op  bvm.OpCode
	typ types.Type
}{
	"position":  {bvm.OpEffectorPosition, types.Float3},
	"velocity":  {bvm.OpEffectorVelocity, types.Float3},
	"co":        {bvm.OpTexCoord, types.Float3},
	"dxt":       {bvm.OpTexDxt, types.Float3},
	"dyt":       {bvm.OpTexDyt, types.Float3},
	"frame":     {bvm.OpTexFrame, types.Int32},
	"osa":       {bvm.OpTexOSA, types.Int32},
	"iteration": {bvm.OpIteration, types.Int32},
}

func (c *compiler) compileIdent(e *syntax.Ident) (value, error) {
	if v, ok := c.names[e.Name]; ok {
		return v, nil
	}
	// context values are read at each use, a read inside one conditional arm does not
	// initialize the other
	if read, ok := contextReads[e.Name]; ok {
		v := c.alloc(read.typ)
		c.asm.Emit(read.op, v.offset)
		return v, nil
	}
	return value{}, errorf(e, "undefined: %s", e.Name)
}

// float converts an int value, other types pass through.
func (c *compiler) float(v value) value {
	if v.typ != types.Int32 {
		return v
	}
	ret := c.alloc(types.Float)
	c.asm.Emit(bvm.OpIntToFloat, v.offset, ret.offset)
	return ret
}

func (c *compiler) expectFloat(node syntax.Node, v value) (value, error) {
	v = c.float(v)
	if v.typ != types.Float {
		return value{}, errorf(node, "expecting float, got %v", v.typ)
	}
	return v, nil
}

func (c *compiler) expectFloat3(node syntax.Node, v value) (value, error) {
	if v.typ != types.Float3 {
		return value{}, errorf(node, "expecting float3, got %v", v.typ)
	}
	return v, nil
}

func (c *compiler) compileUnaryExpr(e *syntax.UnaryExpr) (value, error) {
	x, err := c.compileExpr(e.X)
	if err != nil {
		return value{}, err
	}
	switch e.Op {
	case syntax.PLUS:
		return x, nil
	case syntax.MINUS:
		x = c.float(x)
		ret := c.alloc(x.typ)
		if x.typ == types.Float3 {
			c.asm.Emit(bvm.OpScaleFloat3, x.offset, c.asm.ValueFloat(-1), ret.offset)
		} else {
			c.asm.Emit(bvm.OpSubFloat, c.asm.ValueFloat(0), x.offset, ret.offset)
		}
		return ret, nil
	default:
		return value{}, errorf(e, "unsupported unary op: %v", e.Op)
	}
}

func (c *compiler) compileBinaryExpr(e *syntax.BinaryExpr) (value, error) {
	x, err := c.compileExpr(e.X)
	if err != nil {
		return value{}, err
	}
	y, err := c.compileExpr(e.Y)
	if err != nil {
		return value{}, err
	}
	x = c.float(x)
	y = c.float(y)

	switch e.Op {
	case syntax.LT, syntax.GT:
		if x.typ != types.Float || y.typ != types.Float {
			return value{}, errorf(e, "cannot compare %v and %v", x.typ, y.typ)
		}
		ret := c.alloc(types.Int32)
		op := bvm.OpLessFloat
		if e.Op == syntax.GT {
			op = bvm.OpGreaterFloat
		}
		c.asm.Emit(op, x.offset, y.offset, ret.offset)
		return ret, nil
	}

	var op bvm.OpCode
	switch {
	case x.typ == types.Float && y.typ == types.Float:
		switch e.Op {
		case syntax.PLUS:
			op = bvm.OpAddFloat
		case syntax.MINUS:
			op = bvm.OpSubFloat
		case syntax.STAR:
			op = bvm.OpMulFloat
		case syntax.SLASH:
			op = bvm.OpDivFloat
		}
	case x.typ == types.Float3 && y.typ == types.Float3:
		switch e.Op {
		case syntax.PLUS:
			op = bvm.OpAddFloat3
		case syntax.MINUS:
			op = bvm.OpSubFloat3
		}
	case x.typ == types.Float && y.typ == types.Float3 && e.Op == syntax.STAR:
		x, y = y, x
		op = bvm.OpScaleFloat3
	case x.typ == types.Float3 && y.typ == types.Float:
		switch e.Op {
		case syntax.STAR:
			op = bvm.OpScaleFloat3
		case syntax.SLASH:
			inverse := c.alloc(types.Float)
			c.asm.Emit(bvm.OpDivFloat, c.asm.ValueFloat(1), y.offset, inverse.offset)
			y = inverse
			op = bvm.OpScaleFloat3
		}
	}
	if op == bvm.OpNoop {
		return value{}, errorf(e, "unsupported binary op: %v %v %v", x.typ, e.Op, y.typ)
	}

	ret := c.alloc(x.typ)
	c.asm.Emit(op, x.offset, y.offset, ret.offset)
	return ret, nil
}

func (c *compiler) compileCondExpr(e *syntax.CondExpr) (value, error) {
	cond, err := c.compileExpr(e.Cond)
	if err != nil {
		return value{}, err
	}
	if cond.typ != types.Int32 {
		return value{}, errorf(e.Cond, "condition must be a comparison or int, got %v", cond.typ)
	}
	jumpFalse := c.asm.Emit(bvm.OpJumpIfZero, cond.offset, 0)

	t, err := c.compileExpr(e.True)
	if err != nil {
		return value{}, err
	}
	ret := c.alloc(t.typ)
	c.pass(t, ret)
	jumpEnd := c.asm.Emit(bvm.OpJump, 0)

	c.asm.Patch(jumpFalse, c.asm.PC())
	f, err := c.compileExpr(e.False)
	if err != nil {
		return value{}, err
	}
	if t.typ == types.Float && f.typ == types.Int32 {
		f = c.float(f)
	}
	if f.typ != t.typ {
		return value{}, errorf(e, "branches have different types: %v and %v", t.typ, f.typ)
	}
	c.pass(f, ret)

	c.asm.Patch(jumpEnd, c.asm.PC())
	return ret, nil
}

func (c *compiler) pass(from, to value) {
	switch from.typ {
	case types.Float:
		c.asm.Emit(bvm.OpPassFloat, from.offset, to.offset)
	case types.Int32:
		c.asm.Emit(bvm.OpPassInt, from.offset, to.offset)
	case types.Float3:
		c.asm.Emit(bvm.OpPassFloat3, from.offset, to.offset)
	}
}

var elemNames = map[string]int{
	"x": 0,
	"y": 1,
	"z": 2,
}

func (c *compiler) compileDotExpr(e *syntax.DotExpr) (value, error) {
	elem, ok := elemNames[e.Name.Name]
	if !ok {
		return value{}, errorf(e.Name, "unknown field: %s", e.Name.Name)
	}
	x, err := c.compileExpr(e.X)
	if err != nil {
		return value{}, err
	}
	return c.getElem(e.X, x, elem)
}

func (c *compiler) getElem(node syntax.Node, v value, elem int) (value, error) {
	v, err := c.expectFloat3(node, v)
	if err != nil {
		return value{}, err
	}
	ret := c.alloc(types.Float)
	c.asm.Emit(bvm.OpGetElemFloat3, elem, v.offset, ret.offset)
	return ret, nil
}

func (c *compiler) compileCallExpr(e *syntax.CallExpr) (value, error) {
	ident, ok := e.Fn.(*syntax.Ident)
	if !ok {
		return value{}, errorf(e.Fn, "unsupported callee: %T", e.Fn)
	}
	callee, ok := callees[ident.Name]
	if !ok {
		return value{}, errorf(ident, "unknown function: %s", ident.Name)
	}
	if len(e.Args) != len(callee.params) {
		return value{}, errorf(e, "%s takes %d arguments, got %d", ident.Name, len(callee.params), len(e.Args))
	}

	operands := make([]int, 0, len(e.Args)+1)
	args := make([]value, 0, len(e.Args))
	for i, arg := range e.Args {
		if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
			return value{}, errorf(arg, "keyword arguments are not supported")
		}
		v, err := c.compileExpr(arg)
		if err != nil {
			return value{}, err
		}
		switch callee.params[i] {
		case types.Float:
			v, err = c.expectFloat(arg, v)
		case types.Float3:
			v, err = c.expectFloat3(arg, v)
		case types.Int32:
			if v.typ != types.Int32 {
				err = errorf(arg, "expecting int, got %v", v.typ)
			}
		}
		if err != nil {
			return value{}, err
		}
		args = append(args, v)
		operands = append(operands, v.offset)
	}

	if callee.elem >= 0 {
		return c.getElem(e.Args[0], args[0], callee.elem)
	}
	ret := c.alloc(callee.result)
	operands = append(operands, ret.offset)
	c.asm.Emit(callee.op, operands...)
	return ret, nil
}

type callee struct {
	op     bvm.OpCode
	params []types.Type
	result types.Type
	elem   int
}

const (
	tF  = types.Float
	tF3 = types.Float3
	tI  = types.Int32
)

var callees = map[string]callee{
	"min":       {op: bvm.OpMinFloat, params: []types.Type{tF, tF}, result: tF, elem: -1},
	"max":       {op: bvm.OpMaxFloat, params: []types.Type{tF, tF}, result: tF, elem: -1},
	"map_range": {op: bvm.OpMapRange, params: []types.Type{tF, tF, tF, tF, tF}, result: tF, elem: -1},
	"vec3":      {op: bvm.OpComposeFloat3, params: []types.Type{tF, tF, tF}, result: tF3, elem: -1},
	"dot":       {op: bvm.OpDotFloat3, params: []types.Type{tF3, tF3}, result: tF, elem: -1},
	"length":    {op: bvm.OpLengthFloat3, params: []types.Type{tF3}, result: tF, elem: -1},
	"x":         {params: []types.Type{tF3}, result: tF, elem: 0},
	"y":         {params: []types.Type{tF3}, result: tF, elem: 1},
	"z":         {params: []types.Type{tF3}, result: tF, elem: 2},
	"location":  {op: bvm.OpObjectLocation, params: []types.Type{tI}, result: tF3, elem: -1},
	"verts":     {op: bvm.OpBaseMeshVerts, result: tI, elem: -1},
}
