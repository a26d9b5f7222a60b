package bvm

import "github.com/reusee/fnvm/types"

// Object is an opaque host object reference.
type Object any

// Locator is implemented by objects that have a world location.
type Locator interface {
	Location() types.Vec3
}

// Mesh is the host mesh an evaluation may read from.
type Mesh interface {
	NumVerts() int
}

// EvalGlobals is shared by every instruction of an evaluation and never written by it.
type EvalGlobals struct {
	Objects []Object
}

type EffectorEvalData struct {
	Object   Object
	Position types.Vec3
	Velocity types.Vec3
}

type TextureEvalData struct {
	Co     types.Vec3
	Dxt    types.Vec3
	Dyt    types.Vec3
	Frame  int32
	OSATex bool
}

type ModifierEvalData struct {
	BaseMesh Mesh
}

// EvalData is the per-invocation context read by context instructions.
type EvalData struct {
	Effector  EffectorEvalData
	Texture   TextureEvalData
	Modifier  ModifierEvalData
	Iteration int32
}

var (
	noGlobals EvalGlobals
	noData    EvalData
)
