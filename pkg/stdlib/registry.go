// Package stdlib provides the yap built-ins: the print function and the
// Math namespace, plus the registry that turns them into a global scope.
package stdlib

import (
	"sort"
	"strings"

	"github.com/thomasrohde/yap/pkg/evaluator"
)

// Fn represents a built-in function. Arity -1 means variadic.
// A dotted name such as "Math.abs" places the function in a namespace.
type Fn struct {
	Name    string
	Arity   int
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered built-in functions and constants.
type Registry struct {
	fns    map[string]*Fn
	consts map[string]evaluator.Value
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:    make(map[string]*Fn),
		consts: make(map[string]evaluator.Value),
	}
}

// Register adds a built-in function to the registry.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// RegisterConst adds a named constant, such as "Math.PI".
func (r *Registry) RegisterConst(name string, v evaluator.Value) {
	r.consts[name] = v
}

// Get retrieves a built-in function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered built-in functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns every registered function and constant name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns)+len(r.consts))
	for name := range r.fns {
		names = append(names, name)
	}
	for name := range r.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalsOptions controls how registry entries are bound into the global scope.
type GlobalsOptions struct {
	// Aliases maps a top-level name ("print", "Math") to the names it is
	// bound under. A name missing from the map is bound under itself.
	Aliases map[string][]string
}

// DefaultAliases binds each built-in under its standard and slang names.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"print": {"print", "yapping"},
		"Math":  {"Math", "nerdShit"},
	}
}

// NewGlobals builds the global environment from the registry.
func NewGlobals(reg *Registry, opts GlobalsOptions) *evaluator.Env {
	top := make(map[string]evaluator.Value)
	namespaces := make(map[string]*evaluator.Namespace)

	bind := func(name string, v evaluator.Value) {
		ns, member, dotted := strings.Cut(name, ".")
		if !dotted {
			top[name] = v
			return
		}
		n, ok := namespaces[ns]
		if !ok {
			n = evaluator.NewNamespace(ns)
			namespaces[ns] = n
			top[ns] = n
		}
		n.Set(member, v)
	}

	for name, fn := range reg.fns {
		bind(name, &evaluator.NativeFunction{Name: name, Arity: fn.Arity, Fn: fn.Execute})
	}
	for name, v := range reg.consts {
		bind(name, v)
	}

	env := evaluator.NewEnv(nil)
	for name, v := range top {
		aliases, ok := opts.Aliases[name]
		if !ok {
			aliases = []string{name}
		}
		for _, alias := range aliases {
			env.Declare(alias, v)
		}
	}
	return env
}
