package bvm

import (
	"fmt"
	"math"
	"sync"

	"github.com/reusee/fnvm/builtins"
	"github.com/reusee/fnvm/types"
)

// EvalContext drives evaluations. It keeps no per-call state, so one context
// may serve concurrent evaluations as long as each has its own stack.
type EvalContext struct {
	stacks sync.Pool
}

func NewEvalContext() *EvalContext {
	return &EvalContext{
		stacks: sync.Pool{
			New: func() any {
				stack := NewStack()
				return &stack
			},
		},
	}
}

// EvalFunction evaluates fn from its default entry. args and results are positional
// pointers (*float32, *int32, *types.Vec3) matching fn.Arguments and fn.Returns.
func (c *EvalContext) EvalFunction(globals *EvalGlobals, data *EvalData, fn *Function, args []any, results []any) {
	if len(args) != len(fn.Arguments) {
		panic(fmt.Errorf("%s: expecting %d arguments, got %d", fn.Name, len(fn.Arguments), len(args)))
	}
	if len(results) != len(fn.Returns) {
		panic(fmt.Errorf("%s: expecting %d results, got %d", fn.Name, len(fn.Returns), len(results)))
	}

	ptr := c.stacks.Get().(*Stack)
	defer c.stacks.Put(ptr)
	stack := *ptr
	// a reused stack must not leak values into this evaluation
	clear(stack)

	for i, arg := range fn.Arguments {
		switch arg.Type {
		case types.Float:
			stack.SetFloat(arg.Offset, *pointer[float32](fn, args[i], arg))
		case types.Int32:
			stack.SetInt(arg.Offset, *pointer[int32](fn, args[i], arg))
		case types.Float3:
			stack.SetFloat3(arg.Offset, *pointer[types.Vec3](fn, args[i], arg))
		}
	}

	c.evalInstructions(globals, data, fn, fn.Entry, stack)

	for i, ret := range fn.Returns {
		switch ret.Type {
		case types.Float:
			*pointer[float32](fn, results[i], ret) = stack.Float(ret.Offset)
		case types.Int32:
			*pointer[int32](fn, results[i], ret) = stack.Int(ret.Offset)
		case types.Float3:
			*pointer[types.Vec3](fn, results[i], ret) = stack.Float3(ret.Offset)
		}
	}
}

func pointer[T types.Value](fn *Function, v any, arg Argument) *T {
	ptr, ok := v.(*T)
	if !ok || ptr == nil {
		panic(fmt.Errorf("%s: %s is %v, got %T", fn.Name, arg.Name, arg.Type, v))
	}
	return ptr
}

// EvalExpression runs fn from entryPoint on a caller-owned stack.
func (c *EvalContext) EvalExpression(globals *EvalGlobals, data *EvalData, fn *Function, entryPoint int, stack Stack) {
	if len(stack) < StackSize {
		panic(fmt.Errorf("stack has %d slots, need %d", len(stack), StackSize))
	}
	// slots beyond capacity must fault even without debug assertions
	stack = stack[:StackSize:StackSize]
	c.evalInstructions(globals, data, fn, entryPoint, stack)
}

func (c *EvalContext) evalInstructions(globals *EvalGlobals, data *EvalData, fn *Function, pc int, stack Stack) {
	if globals == nil {
		globals = &noGlobals
	}
	if data == nil {
		data = &noData
	}
	code := fn.Code

	for pc >= 0 && pc < len(code) {
		op := OpCode(code[pc])
		if !op.Valid() {
			panic(fmt.Errorf("%s: unknown opcode %d at %d", fn.Name, code[pc], pc))
		}
		next := pc + 1 + op.NumOperands()
		args := code[pc+1 : next]
		arg := func(i int) int {
			return int(args[i])
		}

		switch op {

		case OpNoop:

		case OpEnd:
			return

		case OpValueFloat:
			stack.SetFloat(arg(1), math.Float32frombits(args[0]))
		case OpValueInt:
			stack.SetInt(arg(1), int32(args[0]))
		case OpValueFloat3:
			stack.SetFloat3(arg(3), types.Vec3{
				math.Float32frombits(args[0]),
				math.Float32frombits(args[1]),
				math.Float32frombits(args[2]),
			})
		case OpPassFloat:
			stack.SetFloat(arg(1), stack.Float(arg(0)))
		case OpPassInt:
			stack.SetInt(arg(1), stack.Int(arg(0)))
		case OpPassFloat3:
			stack.SetFloat3(arg(1), stack.Float3(arg(0)))
		case OpIntToFloat:
			stack.SetFloat(arg(1), float32(stack.Int(arg(0))))

		case OpAddFloat:
			stack.SetFloat(arg(2), stack.Float(arg(0))+stack.Float(arg(1)))
		case OpSubFloat:
			stack.SetFloat(arg(2), stack.Float(arg(0))-stack.Float(arg(1)))
		case OpMulFloat:
			stack.SetFloat(arg(2), stack.Float(arg(0))*stack.Float(arg(1)))
		case OpDivFloat:
			a, b := stack.Float(arg(0)), stack.Float(arg(1))
			var r float32
			if b != 0 {
				r = a / b
			}
			stack.SetFloat(arg(2), r)
		case OpMinFloat:
			stack.SetFloat(arg(2), builtins.Min(stack.Float(arg(0)), stack.Float(arg(1))))
		case OpMaxFloat:
			stack.SetFloat(arg(2), builtins.Max(stack.Float(arg(0)), stack.Float(arg(1))))
		case OpMapRange:
			stack.SetFloat(arg(5), builtins.MapRangeValue(
				stack.Float(arg(0)),
				stack.Float(arg(1)),
				stack.Float(arg(2)),
				stack.Float(arg(3)),
				stack.Float(arg(4)),
			))
		case OpLessFloat:
			stack.SetInt(arg(2), boolInt(stack.Float(arg(0)) < stack.Float(arg(1))))
		case OpGreaterFloat:
			stack.SetInt(arg(2), boolInt(stack.Float(arg(0)) > stack.Float(arg(1))))

		case OpAddFloat3:
			stack.SetFloat3(arg(2), stack.Float3(arg(0)).Add(stack.Float3(arg(1))))
		case OpSubFloat3:
			stack.SetFloat3(arg(2), stack.Float3(arg(0)).Sub(stack.Float3(arg(1))))
		case OpScaleFloat3:
			stack.SetFloat3(arg(2), stack.Float3(arg(0)).Scale(stack.Float(arg(1))))
		case OpDotFloat3:
			stack.SetFloat(arg(2), stack.Float3(arg(0)).Dot(stack.Float3(arg(1))))
		case OpLengthFloat3:
			stack.SetFloat(arg(1), stack.Float3(arg(0)).Length())
		case OpGetElemFloat3:
			stack.SetFloat(arg(2), stack.Float3(arg(1))[arg(0)])
		case OpComposeFloat3:
			stack.SetFloat3(arg(3), types.Vec3{
				stack.Float(arg(0)),
				stack.Float(arg(1)),
				stack.Float(arg(2)),
			})

		case OpJump:
			next = arg(0)
		case OpJumpIfZero:
			if stack.Int(arg(0)) == 0 {
				next = arg(1)
			}

		case OpEffectorPosition:
			stack.SetFloat3(arg(0), data.Effector.Position)
		case OpEffectorVelocity:
			stack.SetFloat3(arg(0), data.Effector.Velocity)
		case OpTexCoord:
			stack.SetFloat3(arg(0), data.Texture.Co)
		case OpTexDxt:
			stack.SetFloat3(arg(0), data.Texture.Dxt)
		case OpTexDyt:
			stack.SetFloat3(arg(0), data.Texture.Dyt)
		case OpTexFrame:
			stack.SetInt(arg(0), data.Texture.Frame)
		case OpTexOSA:
			stack.SetInt(arg(0), boolInt(data.Texture.OSATex))
		case OpIteration:
			stack.SetInt(arg(0), data.Iteration)
		case OpObjectLocation:
			var loc types.Vec3
			if index := int(stack.Int(arg(0))); index >= 0 && index < len(globals.Objects) {
				if locator, ok := globals.Objects[index].(Locator); ok {
					loc = locator.Location()
				}
			}
			stack.SetFloat3(arg(1), loc)
		case OpBaseMeshVerts:
			var n int32
			if data.Modifier.BaseMesh != nil {
				n = int32(data.Modifier.BaseMesh.NumVerts())
			}
			stack.SetInt(arg(0), n)

		}

		pc = next
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
