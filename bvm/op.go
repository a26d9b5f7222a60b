package bvm

import "fmt"

// OpCode is the first word of an instruction. Operand words follow it.
type OpCode uint32

const (
	OpNoop OpCode = iota
	OpEnd

	OpValueFloat
	OpValueInt
	OpValueFloat3
	OpPassFloat
	OpPassInt
	OpPassFloat3
	OpIntToFloat

	OpAddFloat
	OpSubFloat
	OpMulFloat
	OpDivFloat
	OpMinFloat
	OpMaxFloat
	OpMapRange
	OpLessFloat
	OpGreaterFloat

	OpAddFloat3
	OpSubFloat3
	OpScaleFloat3
	OpDotFloat3
	OpLengthFloat3
	OpGetElemFloat3
	OpComposeFloat3

	OpJump
	OpJumpIfZero

	OpEffectorPosition
	OpEffectorVelocity
	OpTexCoord
	OpTexDxt
	OpTexDyt
	OpTexFrame
	OpTexOSA
	OpIteration
	OpObjectLocation
	OpBaseMeshVerts

	numOps
)

type operandKind uint8

const (
	operandFloat operandKind = iota + 1
	operandInt
	operandFloat3
	operandConst
	operandElem
	operandTarget
)

const (
	oF  = operandFloat
	oI  = operandInt
	oF3 = operandFloat3
	oK  = operandConst
)

type opInfo struct {
	name     string
	operands []operandKind
}

var opInfos = [numOps]opInfo{
	OpNoop: {"noop", nil},
	OpEnd:  {"end", nil},

	OpValueFloat:  {"value_float", []operandKind{oK, oF}},
	OpValueInt:    {"value_int", []operandKind{oK, oI}},
	OpValueFloat3: {"value_float3", []operandKind{oK, oK, oK, oF3}},
	OpPassFloat:   {"pass_float", []operandKind{oF, oF}},
	OpPassInt:     {"pass_int", []operandKind{oI, oI}},
	OpPassFloat3:  {"pass_float3", []operandKind{oF3, oF3}},
	OpIntToFloat:  {"int_to_float", []operandKind{oI, oF}},

	OpAddFloat:     {"add_float", []operandKind{oF, oF, oF}},
	OpSubFloat:     {"sub_float", []operandKind{oF, oF, oF}},
	OpMulFloat:     {"mul_float", []operandKind{oF, oF, oF}},
	OpDivFloat:     {"div_float", []operandKind{oF, oF, oF}},
	OpMinFloat:     {"min_float", []operandKind{oF, oF, oF}},
	OpMaxFloat:     {"max_float", []operandKind{oF, oF, oF}},
	OpMapRange:     {"map_range", []operandKind{oF, oF, oF, oF, oF, oF}},
	OpLessFloat:    {"less_float", []operandKind{oF, oF, oI}},
	OpGreaterFloat: {"greater_float", []operandKind{oF, oF, oI}},

	OpAddFloat3:     {"add_float3", []operandKind{oF3, oF3, oF3}},
	OpSubFloat3:     {"sub_float3", []operandKind{oF3, oF3, oF3}},
	OpScaleFloat3:   {"scale_float3", []operandKind{oF3, oF, oF3}},
	OpDotFloat3:     {"dot_float3", []operandKind{oF3, oF3, oF}},
	OpLengthFloat3:  {"length_float3", []operandKind{oF3, oF}},
	OpGetElemFloat3: {"get_elem_float3", []operandKind{operandElem, oF3, oF}},
	OpComposeFloat3: {"compose_float3", []operandKind{oF, oF, oF, oF3}},

	OpJump:       {"jump", []operandKind{operandTarget}},
	OpJumpIfZero: {"jump_if_zero", []operandKind{oI, operandTarget}},

	OpEffectorPosition: {"effector_position", []operandKind{oF3}},
	OpEffectorVelocity: {"effector_velocity", []operandKind{oF3}},
	OpTexCoord:         {"tex_coord", []operandKind{oF3}},
	OpTexDxt:           {"tex_dxt", []operandKind{oF3}},
	OpTexDyt:           {"tex_dyt", []operandKind{oF3}},
	OpTexFrame:         {"tex_frame", []operandKind{oI}},
	OpTexOSA:           {"tex_osa", []operandKind{oI}},
	OpIteration:        {"iteration", []operandKind{oI}},
	OpObjectLocation:   {"object_location", []operandKind{oI, oF3}},
	OpBaseMeshVerts:    {"base_mesh_verts", []operandKind{oI}},
}

func (o OpCode) Valid() bool {
	return o < numOps
}

// NumOperands is the count of operand words following the opcode.
func (o OpCode) NumOperands() int {
	return len(opInfos[o].operands)
}

func (o OpCode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("OpCode(%d)", uint32(o))
	}
	return opInfos[o].name
}

func (k operandKind) slots() int {
	switch k {
	case operandFloat, operandInt:
		return 1
	case operandFloat3:
		return 3
	}
	return 0
}
