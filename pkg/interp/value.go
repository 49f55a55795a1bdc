// Package interp implements the small tree-walking interpreter used only
// at macro-time, when a macro body calls arbitrary source-language code
// (spec §4.4).
package interp

import "github.com/hlvm-dev/hql/pkg/ast"

// Value is the interpreter's value space: nil (null), bool, float64
// (number — the source language has one numeric kind at macro-time,
// unlike the reader's int/float literal split), string, []Value (a
// runtime list), map[string]Value (a runtime mapping), *Closure,
// Builtin, or an ast.Node (a Symbol or List passed through unevaluated
// by quote/quasiquote, so introspection builtins can inspect it
// directly — spec §4.4: "symbols and lists are passed through
// unchanged").
type Value any

// Closure is a user-defined function created by evaluating a `fn` form.
type Closure struct {
	Params []string
	Rest   string // "" if no rest parameter
	Body   []ast.Node
	Env    *Scope
}

// Builtin is a host-native callable.
type Builtin func(args []Value) (Value, error)

// RestSplice tags a macro's captured rest-parameter argument list so
// unquote-splicing recognizes it as spliceable code rather than a single
// runtime list value (spec §4.5: "rest captures the remaining argument
// SExp as a list tagged as a rest-splice"; §4.5: "Rest-splice values
// splice their elements").
type RestSplice struct {
	Elements []ast.Node
}
