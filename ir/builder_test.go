package ir

import (
	"bytes"
	"testing"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("should panic")
		}
	}()
	fn()
}

func TestBuilderMisuse(t *testing.T) {
	module := NewModule()
	b := module.NewFunction("a", 1)
	other := module.NewFunction("b", 1)

	expectPanic(t, func() {
		b.Param(1)
	})
	expectPanic(t, func() {
		b.FAdd(b.Param(0), other.Param(0))
	})
	expectPanic(t, func() {
		// i32 where f32 expected
		b.FAdd(b.FLt(b.Param(0), b.Param(0)), b.Param(0))
	})
	expectPanic(t, func() {
		module.NewFunction("a", 0)
	})

	var inner Value
	b.IfElse(b.FEq(b.Param(0), b.Param(0)), func() Value {
		inner = b.ConstF32(1)
		return inner
	}, func() Value {
		return b.Param(0)
	})
	expectPanic(t, func() {
		b.FAdd(inner, inner)
	})

	b.Finish(b.Param(0))
	expectPanic(t, func() {
		b.ConstF32(1)
	})
}

func TestEncodeUnfinished(t *testing.T) {
	module := NewModule()
	module.NewFunction("a", 0)
	if _, err := module.Encode(); err == nil {
		t.Fatal("expecting error")
	}
}

func TestEncodeHeader(t *testing.T) {
	module := NewModule()
	b := module.NewFunction("one", 0)
	b.Finish(b.ConstF32(1))
	bin, err := module.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bin, wasmHeader) {
		t.Fatalf("got %x", bin)
	}
	if !bytes.Contains(bin, []byte("one")) {
		t.Fatal("export name missing")
	}
	if got := module.Functions(); len(got) != 1 || got[0] != "one" {
		t.Fatalf("got %v", got)
	}
}

func TestULEB(t *testing.T) {
	cases := map[uint32][]byte{
		0:      {0},
		127:    {0x7f},
		128:    {0x80, 0x01},
		624485: {0xe5, 0x8e, 0x26},
	}
	for v, expected := range cases {
		if got := appendULEB(nil, v); !bytes.Equal(got, expected) {
			t.Fatalf("%d: got %x", v, got)
		}
	}
}
