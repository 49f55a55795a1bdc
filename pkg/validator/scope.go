package validator

import (
	"fmt"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// scopeKind names the five scope-introducing constructs spec §4.8 lists:
// program, function, block, class body, and catch clause. No IR node
// models a catch clause (the language surfaces no try/catch form), so
// only the other four kinds are declared.
type scopeKind int

const (
	scopeProgram scopeKind = iota
	scopeFunction
	scopeBlock
	scopeClass
)

// declaration records the statement index a name was bound at, for the
// O(1) TDZ lookup spec §4.8 requires ("declarations track their
// statement index in an O(1) map").
type declaration struct {
	index int
	pos   ast.Position
}

// scope is one single-pass scope-analysis frame. preDeclared entries
// (function parameters, a for-loop's bound variable) use index -1 so
// they can never be the target of a TDZ error.
type scope struct {
	kind   scopeKind
	parent *scope
	decls  map[string]declaration
}

func newScope(parent *scope, kind scopeKind) *scope {
	return &scope{kind: kind, parent: parent, decls: make(map[string]declaration)}
}

// declare records name at index, returning a CodeDuplicateDecl
// diagnostic carrying both locations if name was already bound in this
// scope (spec §4.8: "raise INVALID_EXPRESSION with both declaration
// locations" — using the dedicated CodeDuplicateDecl code pkg/errors
// already reserves for exactly this check).
func (s *scope) declare(name string, index int, pos ast.Position) *hqlerrors.Diagnostic {
	if existing, ok := s.decls[name]; ok {
		msg := fmt.Sprintf(
			"duplicate declaration of %q (first declared at %s:%d:%d)",
			name, existing.pos.FilePath, existing.pos.Line, existing.pos.Column,
		)
		return hqlerrors.New(hqlerrors.CodeDuplicateDecl, msg, pos)
	}
	s.decls[name] = declaration{index: index, pos: pos}
	return nil
}

// lookupLocal reports a name's declaration within this exact scope only;
// TDZ per spec §4.8 never crosses a scope boundary.
func (s *scope) lookupLocal(name string) (declaration, bool) {
	d, ok := s.decls[name]
	return d, ok
}
