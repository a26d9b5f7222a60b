package fn

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Registry memoizes shared functions by key.
type Registry struct {
	entries sync.Map // string -> *registryEntry
}

type registryEntry struct {
	get   func() *Function
	built atomic.Bool
}

// Default is the process-wide registry.
var Default = new(Registry)

// GetOrCreate returns the function for key, running build at most once per key.
func (r *Registry) GetOrCreate(key string, build func() *Function) *Function {
	if v, ok := r.entries.Load(key); ok {
		return v.(*registryEntry).get()
	}
	entry := new(registryEntry)
	entry.get = sync.OnceValue(func() *Function {
		fn := build()
		entry.built.Store(true)
		return fn
	})
	v, _ := r.entries.LoadOrStore(key, entry)
	return v.(*registryEntry).get()
}

// Lookup returns an already constructed function.
func (r *Registry) Lookup(key string) (*Function, bool) {
	v, ok := r.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := v.(*registryEntry)
	if !entry.built.Load() {
		return nil, false
	}
	return entry.get(), true
}

func (r *Registry) Keys() (ret []string) {
	r.entries.Range(func(key, value any) bool {
		if value.(*registryEntry).built.Load() {
			ret = append(ret, key.(string))
		}
		return true
	})
	slices.Sort(ret)
	return
}
