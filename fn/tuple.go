package fn

import (
	"unsafe"

	"github.com/reusee/fnvm/asserts"
	"github.com/reusee/fnvm/types"
)

// TupleMeta is the slot layout shared by every tuple of one parameter list.
type TupleMeta struct {
	types   []types.Type
	offsets []int
	size    int
}

func newTupleMeta(params []Parameter) *TupleMeta {
	meta := &TupleMeta{
		types:   make([]types.Type, len(params)),
		offsets: make([]int, len(params)),
	}
	offset := 0
	for i, param := range params {
		align := param.Type.Align()
		offset = (offset + align - 1) / align * align
		meta.types[i] = param.Type
		meta.offsets[i] = offset
		offset += param.Type.Size()
	}
	meta.size = offset
	return meta
}

func (m *TupleMeta) New() *Tuple {
	return &Tuple{
		meta: m,
		// uint64 words keep every slot aligned
		buf: make([]uint64, (m.size+7)/8),
	}
}

// Tuple is a positional container of typed values.
type Tuple struct {
	meta *TupleMeta
	buf  []uint64
}

func (t *Tuple) Len() int {
	return len(t.meta.types)
}

func (t *Tuple) Type(i int) types.Type {
	return t.meta.types[i]
}

func (t *Tuple) ptr(i int) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(t.buf)), t.meta.offsets[i])
}

func (t *Tuple) bytes(i int) []byte {
	return unsafe.Slice((*byte)(t.ptr(i)), t.meta.types[i].Size())
}

// Get reads slot i. T must match the declared slot type.
func Get[T types.Value](t *Tuple, i int) T {
	if asserts.Enabled {
		asserts.That(t.meta.types[i] == types.Of[T](),
			"tuple slot %d is %v, read as %v", i, t.meta.types[i], types.Of[T]())
	}
	return *(*T)(t.ptr(i))
}

// Set writes slot i. T must match the declared slot type.
func Set[T types.Value](t *Tuple, i int, value T) {
	if asserts.Enabled {
		asserts.That(t.meta.types[i] == types.Of[T](),
			"tuple slot %d is %v, written as %v", i, t.meta.types[i], types.Of[T]())
	}
	*(*T)(t.ptr(i)) = value
}

// CopyTo copies slot i into slot j of dst. Both slots must have the same type.
func (t *Tuple) CopyTo(i int, dst *Tuple, j int) {
	if asserts.Enabled {
		asserts.That(t.meta.types[i] == dst.meta.types[j],
			"copy %v slot %d into %v slot %d", t.meta.types[i], i, dst.meta.types[j], j)
	}
	copy(dst.bytes(j), t.bytes(i))
}

func (t *Tuple) Reset() {
	clear(t.buf)
}
