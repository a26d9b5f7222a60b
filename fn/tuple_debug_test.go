//go:build fnvmdebug

package fn

import (
	"strings"
	"testing"

	"github.com/reusee/fnvm/types"
)

func TestTupleTypeMismatch(t *testing.T) {
	sig := NewSignature([]Parameter{
		Param("a", types.Float),
	}, nil)
	in := sig.NewInputs()
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("should panic")
		}
		if !strings.Contains(p.(error).Error(), "read as int") {
			t.Fatalf("got %v", p)
		}
	}()
	Get[int32](in, 0)
}
