package ir

import (
	"fmt"
)

const (
	opIf       = 0x04
	opElse     = 0x05
	opEnd      = 0x0b
	opSelect   = 0x1b
	opLocalGet = 0x20
	opLocalSet = 0x21
	opF32Const = 0x43
	opF32Eq    = 0x5b
	opF32Lt    = 0x5d
	opF32Gt    = 0x5e
	opF32Add   = 0x92
	opF32Sub   = 0x93
	opF32Mul   = 0x94
	opF32Div   = 0x95

	blockTypeF32 = 0x7d
	valTypeF32   = 0x7d
	valTypeI32   = 0x7f
	funcType     = 0x60
	exportFunc   = 0x00

	sectionType     = 1
	sectionFunction = 3
	sectionExport   = 7
	sectionCode     = 10
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Module is a set of named functions encoded as one WebAssembly module.
type Module struct {
	funcs []*Builder
	names map[string]bool
}

func NewModule() *Module {
	return &Module{
		names: make(map[string]bool),
	}
}

// NewFunction starts a function taking numParams f32 parameters.
func (m *Module) NewFunction(name string, numParams int) *Builder {
	if m.names[name] {
		panic(fmt.Errorf("duplicated function %s", name))
	}
	m.names[name] = true
	b := &Builder{
		name:      name,
		numParams: numParams,
	}
	m.funcs = append(m.funcs, b)
	return b
}

func (m *Module) Functions() []string {
	ret := make([]string, 0, len(m.funcs))
	for _, fn := range m.funcs {
		ret = append(ret, fn.name)
	}
	return ret
}

func (m *Module) Encode() ([]byte, error) {
	for _, fn := range m.funcs {
		if !fn.finished {
			return nil, fmt.Errorf("function %s not finished", fn.name)
		}
	}

	buf := append([]byte(nil), wasmHeader...)

	// types, one per function
	var sec []byte
	sec = appendULEB(sec, uint32(len(m.funcs)))
	for _, fn := range m.funcs {
		sec = append(sec, funcType)
		sec = appendULEB(sec, uint32(fn.numParams))
		for range fn.numParams {
			sec = append(sec, valTypeF32)
		}
		sec = appendULEB(sec, uint32(len(fn.results)))
		for range fn.results {
			sec = append(sec, valTypeF32)
		}
	}
	buf = appendSection(buf, sectionType, sec)

	// functions
	sec = sec[:0]
	sec = appendULEB(sec, uint32(len(m.funcs)))
	for i := range m.funcs {
		sec = appendULEB(sec, uint32(i))
	}
	buf = appendSection(buf, sectionFunction, sec)

	// exports
	sec = sec[:0]
	sec = appendULEB(sec, uint32(len(m.funcs)))
	for i, fn := range m.funcs {
		sec = appendULEB(sec, uint32(len(fn.name)))
		sec = append(sec, fn.name...)
		sec = append(sec, exportFunc)
		sec = appendULEB(sec, uint32(i))
	}
	buf = appendSection(buf, sectionExport, sec)

	// code
	sec = sec[:0]
	sec = appendULEB(sec, uint32(len(m.funcs)))
	for _, fn := range m.funcs {
		body := encodeBody(fn)
		sec = appendULEB(sec, uint32(len(body)))
		sec = append(sec, body...)
	}
	buf = appendSection(buf, sectionCode, sec)

	return buf, nil
}

func encodeBody(fn *Builder) []byte {
	type group struct {
		count uint32
		kind  Kind
	}
	var groups []group
	for _, kind := range fn.locals {
		if n := len(groups); n > 0 && groups[n-1].kind == kind {
			groups[n-1].count++
			continue
		}
		groups = append(groups, group{1, kind})
	}

	var body []byte
	body = appendULEB(body, uint32(len(groups)))
	for _, g := range groups {
		body = appendULEB(body, g.count)
		if g.kind == I32 {
			body = append(body, valTypeI32)
		} else {
			body = append(body, valTypeF32)
		}
	}
	body = append(body, fn.code...)
	for _, v := range fn.results {
		body = append(body, opLocalGet)
		body = appendULEB(body, v.local)
	}
	body = append(body, opEnd)
	return body
}

func appendSection(buf []byte, id byte, content []byte) []byte {
	buf = append(buf, id)
	buf = appendULEB(buf, uint32(len(content)))
	return append(buf, content...)
}

func appendULEB(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}
