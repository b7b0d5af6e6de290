package schema

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/strata"
)

// Registry holds entity descriptors. It is populated once, either eagerly
// through Register or lazily through Load, and read concurrently afterwards.
// A Registry is owned by the code that creates it and passed to the
// components that need it.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*TypeInfo
	byType map[reflect.Type]*TypeInfo
	group  singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*TypeInfo),
		byType: make(map[reflect.Type]*TypeInfo),
	}
}

// Register adds descriptors to the registry. Registering a second
// descriptor under an existing name is an error.
func (r *Registry) Register(infos ...*TypeInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range infos {
		if err := r.add(t); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(infos ...*TypeInfo) {
	if err := r.Register(infos...); err != nil {
		panic(err)
	}
}

// add registers t. Callers must hold the write lock.
func (r *Registry) add(t *TypeInfo) error {
	if t == nil {
		return strata.NewConfigError("registry", "nil descriptor")
	}
	if _, ok := r.byName[t.Name]; ok {
		return strata.NewConfigError(t.Name, "entity already registered")
	}
	r.byName[t.Name] = t
	if t.typ != nil && t.typ != recordType {
		if _, ok := r.byType[t.typ]; !ok {
			r.byType[t.typ] = t
		}
	}
	return nil
}

// Load returns the descriptor registered under name, building and
// registering it on first use. Concurrent callers asking for the same name
// share a single build.
func (r *Registry) Load(name string, build func() (*TypeInfo, error)) (*TypeInfo, error) {
	if t, ok := r.Lookup(name); ok {
		return t, nil
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		if t, ok := r.Lookup(name); ok {
			return t, nil
		}
		t, err := build()
		if err != nil {
			return nil, fmt.Errorf("schema: build %s: %w", name, err)
		}
		if t.Name != name {
			return nil, strata.NewConfigError(name, "builder returned descriptor %q", t.Name)
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.add(t); err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TypeInfo), nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// For returns the descriptor of the entity's Go type. entity must be a
// pointer to a described struct.
func (r *Registry) For(entity any) (*TypeInfo, error) {
	r.mu.RLock()
	t, ok := r.byType[reflect.TypeOf(entity)]
	r.mu.RUnlock()
	if !ok {
		return nil, strata.NewConfigError(fmt.Sprintf("%T", entity), "entity type is not registered")
	}
	return t, nil
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
