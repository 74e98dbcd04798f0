package evaluator

import "sort"

// Env is a scoped environment for variable bindings.
// It supports parent-chained lookup for lexical scoping.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Parent returns the enclosing scope, or nil for the global scope.
func (e *Env) Parent() *Env {
	return e.parent
}

// Get looks up a variable by name, traversing parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Declare binds a variable in this scope, shadowing any outer binding and
// replacing an existing binding of the same name in this scope.
func (e *Env) Declare(name string, val Value) {
	e.bindings[name] = val
}

// Assign updates the nearest scope that binds name. It reports false, and
// changes nothing, when no scope in the chain has the binding.
func (e *Env) Assign(name string, val Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return true
		}
	}
	return false
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// HasLocal checks whether a variable is defined in this scope only.
func (e *Env) HasLocal(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Names returns the names bound in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
