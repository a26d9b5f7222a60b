package fn

import (
	"errors"
	"fmt"
)

var ErrCapabilityUnsupported = errors.New("capability unsupported for this function")

// Function pairs a signature with at most one body per capability.
// A built Function never changes.
type Function struct {
	name      string
	signature Signature
	bodies    [numCapabilities]Body
}

type Builder struct {
	name      string
	signature Signature
	bodies    [numCapabilities]Body
	built     bool
}

func NewBuilder(name string, signature Signature) *Builder {
	return &Builder{
		name:      name,
		signature: signature,
	}
}

// AddBody sets the body for its capability, replacing any body added before.
func (b *Builder) AddBody(body Body) *Builder {
	if b.built {
		panic(fmt.Errorf("function %s already built", b.name))
	}
	c := body.Capability()
	if c >= numCapabilities {
		panic(fmt.Errorf("unknown capability %v", c))
	}
	b.bodies[c] = body
	return b
}

func (b *Builder) Build() *Function {
	b.built = true
	return &Function{
		name:      b.name,
		signature: b.signature,
		bodies:    b.bodies,
	}
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Signature() Signature {
	return f.signature
}

func (f *Function) Supports(c Capability) bool {
	return c < numCapabilities && f.bodies[c] != nil
}

func (f *Function) Body(c Capability) (Body, bool) {
	if !f.Supports(c) {
		return nil, false
	}
	return f.bodies[c], true
}

func (f *Function) TupleCall() (TupleCallBody, bool) {
	body, ok := f.bodies[TupleCall].(TupleCallBody)
	return body, ok
}

func (f *Function) IRBody() (BuildIRBody, bool) {
	body, ok := f.bodies[BuildIR].(BuildIRBody)
	return body, ok
}

// Call runs the tuple-call body. The function must support TupleCall.
func (f *Function) Call(ctx *ExecutionContext, in, out *Tuple) {
	body, ok := f.TupleCall()
	if !ok {
		panic(fmt.Errorf("%s: %w: %v", f.name, ErrCapabilityUnsupported, TupleCall))
	}
	body.Call(in, out, ctx)
}

func (f *Function) String() string {
	return f.name
}
