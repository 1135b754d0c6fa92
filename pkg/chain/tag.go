package chain

import (
	"reflect"
	"sync"
)

// DefaultTag selects the registry returned by Default.
type DefaultTag struct{}

var (
	tagMu  sync.Mutex
	tagged = map[reflect.Type]*Registry{}
)

// Of returns the process-wide registry for tag type T, creating it on first
// use. opts only apply to that first call; use Configure afterwards.
// Distinct tag types never share a registry.
func Of[T any](opts ...Option) *Registry {
	key := reflect.TypeFor[T]()

	tagMu.Lock()
	defer tagMu.Unlock()
	if r, ok := tagged[key]; ok {
		return r
	}
	name := key.String()
	if key == reflect.TypeFor[DefaultTag]() {
		name = "default"
	}
	r := New(append([]Option{WithName(name)}, opts...)...)
	tagged[key] = r
	return r
}

// Default returns the registry for DefaultTag.
func Default() *Registry { return Of[DefaultTag]() }
