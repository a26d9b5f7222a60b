package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

// ModuleForProduction provides ModeProduction and a nil *testing.T.
type ModuleForProduction struct {
	dscope.Module
}

func ForProduction() ModuleForProduction {
	return ModuleForProduction{}
}

func (ModuleForProduction) T() *testing.T {
	return nil
}

func (ModuleForProduction) Mode() Mode {
	return ModeProduction
}

// ModuleForDevelopment runs a program in development mode, outside of tests.
type ModuleForDevelopment struct {
	dscope.Module
}

func ForDevelopment() ModuleForDevelopment {
	return ModuleForDevelopment{}
}

func (ModuleForDevelopment) T() *testing.T {
	return nil
}

func (ModuleForDevelopment) Mode() Mode {
	return ModeDevelopment
}

// ModuleForTest is development mode bound to a test.
type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (m ModuleForTest) Mode() Mode {
	return ModeDevelopment
}

// For returns the program module of mode.
func For(mode Mode) any {
	if mode == ModeDevelopment {
		return ForDevelopment()
	}
	return ForProduction()
}
