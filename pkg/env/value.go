package env

import "github.com/hlvm-dev/hql/pkg/ast"

// Value is anything an Environment variable or module export can bind to:
// an SExp (macro-time data), a MacroFn (a macro binding reached through
// lookup), or a host-native Go value (numbers, strings, booleans, nil,
// slices/maps) produced by the interpreter (spec §3: "Value").
type Value any

// MacroFn is a macro callable: given the unevaluated argument forms and
// the environment at the call site, it returns the expansion (spec §3:
// "A macro is a callable (args: [SExp], env) -> SExp").
type MacroFn func(args []ast.Node, env *Environment) (ast.Node, error)

// MacroKind distinguishes system macros (always globally accessible) from
// user macros (per-file, requiring explicit export/import) without
// resorting to a host function object carrying hidden state — spec §8
// suggests representing MacroFn as a closure tagged with its provenance
// "to permit safe serialization and deterministic hashing of macro
// identities"; MacroBinding is that tag.
type MacroKind int

const (
	MacroSystem MacroKind = iota
	MacroUser
)

// MacroBinding pairs a macro's callable with its identity metadata.
type MacroBinding struct {
	Fn         MacroFn
	Kind       MacroKind
	Name       string
	SourceFile string // "" for system macros
}
