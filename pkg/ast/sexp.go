package ast

import "strings"

// Node is the closed sum type for S-expressions: Symbol, Literal, or List.
// Dispatch on concrete type (a type switch) replaces virtual methods,
// matching this corpus's preference for tagged sums over subclassing
// (see pkg/ast/ast.go in the teacher for the same shape applied to
// expression nodes).
type Node interface {
	Pos() Position
	sexpNode()
}

// Symbol is a bare identifier. Name may contain '.' and '-', may end in
// '#' (an auto-gensym template marker, spec §4.5), or be the rest marker
// "&" used in parameter vectors.
type Symbol struct {
	Name string
	Meta Position
}

func (s *Symbol) Pos() Position { return s.Meta }
func (*Symbol) sexpNode()       {}

// IsRestMarker reports whether s is the "&" rest-parameter marker.
func (s *Symbol) IsRestMarker() bool { return s.Name == "&" }

// IsGensymTemplate reports whether s ends in '#', marking it for
// auto-gensym rewriting inside a quasi-quote template.
func (s *Symbol) IsGensymTemplate() bool {
	return strings.HasSuffix(s.Name, "#") && s.Name != "#"
}

// LiteralKind tags the dynamic type carried by a Literal's Value.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Literal is a self-evaluating constant: null, boolean, integer, float, or string.
type Literal struct {
	Kind  LiteralKind
	Value any // nil, bool, int64, float64, or string, matching Kind
	Meta  Position
}

func (l *Literal) Pos() Position { return l.Meta }
func (*Literal) sexpNode()       {}

// List is an ordered sequence of elements. It represents both operator
// forms (head symbol is the operator) and the two sugar forms introduced
// at read time: `vector` for `[...]` and `hash-map` for `{...}` (spec §4.1).
type List struct {
	Elements []Node
	Meta     Position
}

func (l *List) Pos() Position { return l.Meta }
func (*List) sexpNode()       {}

// NewList builds a List from elements, with meta as its position.
func NewList(meta Position, elements ...Node) *List {
	return &List{Elements: elements, Meta: meta}
}

// Head returns the symbol name of l's first element, or "" if l is empty
// or does not begin with a symbol.
func (l *List) Head() string {
	if len(l.Elements) == 0 {
		return ""
	}
	if sym, ok := l.Elements[0].(*Symbol); ok {
		return sym.Name
	}
	return ""
}

// Tail returns l's elements after the head.
func (l *List) Tail() []Node {
	if len(l.Elements) == 0 {
		return nil
	}
	return l.Elements[1:]
}

// IsForm reports whether l is a list whose head symbol is name.
func IsForm(n Node, name string) bool {
	l, ok := n.(*List)
	return ok && l.Head() == name
}

// Sym is a convenience constructor for a Symbol node.
func Sym(name string, meta Position) *Symbol { return &Symbol{Name: name, Meta: meta} }

// Str is a convenience constructor for a string Literal node.
func Str(value string, meta Position) *Literal {
	return &Literal{Kind: LitString, Value: value, Meta: meta}
}

// Int is a convenience constructor for an integer Literal node.
func Int(value int64, meta Position) *Literal {
	return &Literal{Kind: LitInt, Value: value, Meta: meta}
}

// CloneShallow returns a copy of n with the same Meta but, for List,
// a new (but shallow-copied) Elements slice. Used by rewrites that
// replace a container's contents while preserving its position (spec §3:
// "Meta is copied, not shared; rewrites preserve meta of the rewritten
// container").
func CloneShallow(n Node) Node {
	switch v := n.(type) {
	case *Symbol:
		c := *v
		return &c
	case *Literal:
		c := *v
		return &c
	case *List:
		elements := make([]Node, len(v.Elements))
		copy(elements, v.Elements)
		return &List{Elements: elements, Meta: v.Meta}
	default:
		return n
	}
}

// RetagMeta returns a copy of n with every node in its subtree whose
// FilePath differs from file rewritten to carry file instead, preserving
// line/column. This is the call-site meta propagation macro expansion
// requires (spec §4.5): expansion output originating in a macro
// definition file is re-labelled to point at the call site so diagnostics
// land where the user wrote the call, not where the macro was defined.
func RetagMeta(n Node, file string) Node {
	return retag(n, file)
}

func retag(n Node, file string) Node {
	switch v := n.(type) {
	case *Symbol:
		if v.Meta.FilePath == file {
			return v
		}
		c := *v
		c.Meta = c.Meta.WithFile(file)
		return &c
	case *Literal:
		if v.Meta.FilePath == file {
			return v
		}
		c := *v
		c.Meta = c.Meta.WithFile(file)
		return &c
	case *List:
		changed := v.Meta.FilePath != file
		elements := v.Elements
		for i, e := range v.Elements {
			re := retag(e, file)
			if re != e {
				if !changed {
					elements = make([]Node, len(v.Elements))
					copy(elements, v.Elements)
					changed = true
				}
				elements[i] = re
			}
		}
		if !changed {
			return v
		}
		meta := v.Meta
		meta.FilePath = file
		return &List{Elements: elements, Meta: meta}
	default:
		return n
	}
}
