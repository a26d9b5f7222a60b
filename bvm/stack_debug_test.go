//go:build fnvmdebug

package bvm

import (
	"strings"
	"testing"
)

func TestStackAssertion(t *testing.T) {
	stack := make(Stack, StackSize+10)
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("should panic")
		}
		if !strings.Contains(p.(error).Error(), "exceeds capacity") {
			t.Fatalf("got %v", p)
		}
	}()
	stack.SetFloat(StackSize, 1)
}
