package interp

import (
	"github.com/hlvm-dev/hql/pkg/env"
)

// Scope is the interpreter's own binding chain, distinct from the
// compiler-level env.Environment: it exists only for the duration of one
// macro-time evaluation.
type Scope struct {
	parent     *Scope
	vars       map[string]Value
	nextGensym func() int
}

// NewScope creates a root scope with no parent. Its gensym counter is
// private to this scope tree; FlattenEnvironment replaces it with one
// backed by the compiler-level Environment so gensym numbering is
// deterministic across a whole compilation rather than reset per scope.
func NewScope() *Scope {
	counter := 0
	return &Scope{
		vars: make(map[string]Value),
		nextGensym: func() int {
			counter++
			return counter
		},
	}
}

// Child returns a new scope nested under s, sharing its gensym counter.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]Value), nextGensym: s.nextGensym}
}

// Define binds name in the *current* scope. `var` forms must use this —
// not a fresh child scope — because gensym-generated bindings created
// inside a macro body need to remain visible to sibling expressions in
// that same body (spec §4.4: "var (defines in the current env — required
// for gensym-in-macro)").
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Get resolves name by walking from s to the root.
func (s *Scope) Get(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// FlattenEnvironment builds a root Scope from the entire scope chain of a
// compiler-level env.Environment, innermost bindings shadowing outer ones
// (spec §4.4: "Bridge contract... all bindings from the entire scope
// chain of the compiler environment are flattened into a single
// interpreter scope").
func FlattenEnvironment(e *env.Environment) *Scope {
	scope := NewScope()
	scope.nextGensym = e.NextGensym
	for _, name := range e.AllVisibleNames() {
		v, err := e.Lookup(name)
		if err != nil {
			continue
		}
		if _, already := scope.vars[name]; !already {
			scope.vars[name] = literalValueFromEnv(v)
		}
	}
	return scope
}

// literalValueFromEnv adapts an env.Value into the interpreter's Value
// space. Most values already share the same dynamic-type vocabulary
// (nil/bool/string/ast.Node/etc.); this is a hook point should the two
// value spaces need to diverge further.
func literalValueFromEnv(v env.Value) Value {
	return Value(v)
}
