package fn

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRegistryConcurrentFirstAccess(t *testing.T) {
	registry := new(Registry)
	var constructions atomic.Int64
	build := func() *Function {
		constructions.Add(1)
		return NewBuilder("Subtract", testSig).AddBody(subBody()).Build()
	}

	const n = 128
	results := make([]*Function, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range n {
		wg.Go(func() {
			<-start
			results[i] = registry.GetOrCreate("Subtract", build)
		})
	}
	close(start)
	wg.Wait()

	if c := constructions.Load(); c != 1 {
		t.Fatalf("constructed %d times", c)
	}
	for _, f := range results {
		if f != results[0] {
			t.Fatal("different instances")
		}
	}
	if f := registry.GetOrCreate("Subtract", build); f != results[0] {
		t.Fatal()
	}
	if constructions.Load() != 1 {
		t.Fatal()
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := new(Registry)
	if _, ok := registry.Lookup("Subtract"); ok {
		t.Fatal()
	}
	f := registry.GetOrCreate("Subtract", func() *Function {
		return NewBuilder("Subtract", testSig).Build()
	})
	got, ok := registry.Lookup("Subtract")
	if !ok || got != f {
		t.Fatal()
	}
	registry.GetOrCreate("Add", func() *Function {
		return NewBuilder("Add", testSig).Build()
	})
	keys := registry.Keys()
	if len(keys) != 2 || keys[0] != "Add" || keys[1] != "Subtract" {
		t.Fatalf("got %v", keys)
	}
}
