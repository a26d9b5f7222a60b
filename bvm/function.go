package bvm

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/reusee/fnvm/types"
)

var ErrInvalidFunction = errors.New("invalid function")

// Argument binds a positional argument or return value to a stack offset.
type Argument struct {
	Name   string
	Type   types.Type
	Offset int
}

// Function is a compiled instruction sequence.
type Function struct {
	Name        string
	Code        []uint32
	Entry       int
	EntryPoints map[string]int
	Arguments   []Argument
	Returns     []Argument
}

func (f *Function) EntryPoint(name string) (int, bool) {
	pc, ok := f.EntryPoints[name]
	return pc, ok
}

func (f *Function) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidFunction, f.Name, fmt.Sprintf(format, args...))
}

// Validate checks the whole instruction stream before it is trusted by evaluation.
// Jumps must go forward, so every evaluation terminates.
func (f *Function) Validate() error {
	starts := make(map[int]bool)
	type jump struct {
		pc     int
		target int
	}
	var jumps []jump

	for pc := 0; pc < len(f.Code); {
		op := OpCode(f.Code[pc])
		if !op.Valid() {
			return f.invalid("unknown opcode %d at %d", f.Code[pc], pc)
		}
		kinds := opInfos[op].operands
		if pc+1+len(kinds) > len(f.Code) {
			return f.invalid("truncated %v at %d", op, pc)
		}
		starts[pc] = true
		for j, kind := range kinds {
			v := int64(f.Code[pc+1+j])
			switch kind {
			case operandFloat, operandInt, operandFloat3:
				if v+int64(kind.slots()) > StackSize {
					return f.invalid("%v at %d: stack offset %d exceeds capacity %d", op, pc, v, StackSize)
				}
			case operandElem:
				if v > 2 {
					return f.invalid("%v at %d: element index %d", op, pc, v)
				}
			case operandTarget:
				jumps = append(jumps, jump{pc, int(v)})
			}
		}
		pc += 1 + len(kinds)
	}

	isStart := func(pc int) bool {
		return starts[pc] || pc == len(f.Code)
	}
	for _, j := range jumps {
		if j.target <= j.pc {
			return f.invalid("backward jump at %d to %d", j.pc, j.target)
		}
		if !isStart(j.target) {
			return f.invalid("jump at %d to %d is not an instruction", j.pc, j.target)
		}
	}

	if !isStart(f.Entry) {
		return f.invalid("bad entry %d", f.Entry)
	}
	for name, pc := range f.EntryPoints {
		if !isStart(pc) {
			return f.invalid("bad entry point %s: %d", name, pc)
		}
	}

	for what, args := range map[string][]Argument{
		"argument": f.Arguments,
		"return":   f.Returns,
	} {
		for _, arg := range args {
			if !arg.Type.Valid() {
				return f.invalid("%s %s has invalid type", what, arg.Name)
			}
			if arg.Offset < 0 || arg.Offset+arg.Type.Slots() > StackSize {
				return f.invalid("%s %s: stack offset %d exceeds capacity %d", what, arg.Name, arg.Offset, StackSize)
			}
		}
	}

	return nil
}

// Disassemble renders the instruction stream, one instruction per line.
func (f *Function) Disassemble() string {
	buf := new(strings.Builder)
	labels := make(map[int][]string)
	for name, pc := range f.EntryPoints {
		labels[pc] = append(labels[pc], name)
	}
	for pc := 0; pc < len(f.Code); {
		for _, label := range labels[pc] {
			fmt.Fprintf(buf, "%s:\n", label)
		}
		op := OpCode(f.Code[pc])
		if !op.Valid() {
			fmt.Fprintf(buf, "%04d\t%v\n", pc, op)
			pc++
			continue
		}
		fmt.Fprintf(buf, "%04d\t%v", pc, op)
		for j, kind := range opInfos[op].operands {
			if pc+1+j >= len(f.Code) {
				break
			}
			v := f.Code[pc+1+j]
			switch kind {
			case operandConst:
				if op == OpValueInt {
					fmt.Fprintf(buf, " #%d", int32(v))
				} else {
					fmt.Fprintf(buf, " #%v", math.Float32frombits(v))
				}
			case operandTarget:
				fmt.Fprintf(buf, " ->%04d", v)
			case operandElem:
				fmt.Fprintf(buf, " [%d]", v)
			default:
				fmt.Fprintf(buf, " %%%d", v)
			}
		}
		buf.WriteString("\n")
		pc += 1 + op.NumOperands()
	}
	return buf.String()
}
