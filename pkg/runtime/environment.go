package runtime

import (
	"sort"
	"sync"
)

// Environment is a chain of name scopes (locals, globals, builtins).
type Environment struct {
	values map[string]Value
	parent *Environment
	mu     sync.RWMutex
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the enclosing scope (nil for builtins).
func (e *Environment) Parent() *Environment {
	e.mu.RLock()
	parent := e.parent
	e.mu.RUnlock()
	return parent
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.mu.Lock()
	e.values[name] = value
	e.mu.Unlock()
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	e.mu.Lock()
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		e.mu.Unlock()
		return nil
	}
	parent := e.parent
	e.mu.Unlock()
	if parent != nil {
		return parent.Assign(name, value)
	}
	return Errorf(NameError, "name '%s' is not defined", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	e.mu.RLock()
	if v, ok := e.values[name]; ok {
		e.mu.RUnlock()
		return v, nil
	}
	parent := e.parent
	e.mu.RUnlock()
	if parent != nil {
		return parent.Get(name)
	}
	return nil, Errorf(NameError, "name '%s' is not defined", name)
}

// Has reports whether the binding exists anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	_, err := e.Get(name)
	return err == nil
}

// Keys returns the bindings of this scope in sorted order.
func (e *Environment) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// ToDict snapshots this scope into a dict, keys in sorted order.
func (e *Environment) ToDict() *DictValue {
	d := NewDict()
	for _, k := range e.Keys() {
		e.mu.RLock()
		v := e.values[k]
		e.mu.RUnlock()
		d.defineStr(k, v)
	}
	return d
}
