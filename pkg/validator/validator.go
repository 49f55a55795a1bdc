// Package validator implements the semantic validator (C9, spec §4.8):
// a single-pass scope analysis over pkg/ir that checks for duplicate
// declarations and temporal-dead-zone references. Scopes are introduced
// by the program, functions, blocks (if/while/for bodies), and class
// bodies; the source language surfaces no try/catch form, so the fifth
// scope kind spec §4.8 names — a catch clause — has no IR node to
// attach to and never arises here.
package validator

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// Validate runs both checks over an entire program and returns every
// diagnostic found; it does not stop at the first error, so a caller can
// report all of them at once.
func Validate(prog *ir.Program) []*hqlerrors.Diagnostic {
	root := newScope(nil, scopeProgram)
	return validateBlock(prog.Body, root)
}

// validateBlock runs the declare pass then the check pass over one
// statement list against scope (already created, and possibly
// pre-populated — by params or a for-loop variable — by the caller).
func validateBlock(stmts []ir.Node, s *scope) []*hqlerrors.Diagnostic {
	var errs []*hqlerrors.Diagnostic
	for i, stmt := range stmts {
		errs = append(errs, declareStatement(stmt, s, i)...)
	}
	for i, stmt := range stmts {
		errs = append(errs, checkStatement(stmt, s, i)...)
	}
	return errs
}

// declareStatement records every name stmt binds directly into s at
// index i. It does not recurse into nested scopes (a nested fn/class/
// block's own declarations belong to its own scope, populated when that
// scope is validated).
func declareStatement(stmt ir.Node, s *scope, index int) []*hqlerrors.Diagnostic {
	var errs []*hqlerrors.Diagnostic
	switch v := stmt.(type) {
	case *ir.VariableDeclaration:
		for _, d := range v.Declarations {
			for _, b := range flattenPattern(d.ID) {
				if err := s.declare(b.name, index, b.node.Pos()); err != nil {
					errs = append(errs, err)
				}
			}
		}
	case *ir.FnFunctionDeclaration:
		if err := s.declare(v.Name, index, v.Meta); err != nil {
			errs = append(errs, err)
		}
	case *ir.ClassDeclaration:
		if err := s.declare(v.Name, index, v.Meta); err != nil {
			errs = append(errs, err)
		}
	case *ir.ImportDeclaration:
		for _, spec := range v.Specifiers {
			if err := s.declare(spec.Local, index, v.Meta); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// checkStatement checks every identifier reference stmt's expressions
// contain against s at index, and recurses into any scope stmt itself
// introduces.
func checkStatement(stmt ir.Node, s *scope, index int) []*hqlerrors.Diagnostic {
	switch v := stmt.(type) {
	case *ir.ExpressionStatement:
		return checkExpr(v.Expression, s, index)
	case *ir.VariableDeclaration:
		var errs []*hqlerrors.Diagnostic
		for _, d := range v.Declarations {
			errs = append(errs, checkExpr(d.Init, s, index)...)
		}
		return errs
	case *ir.ReturnStatement:
		return checkExpr(v.Argument, s, index)
	case *ir.ThrowStatement:
		return checkExpr(v.Argument, s, index)
	case *ir.IfStatement:
		errs := checkExpr(v.Test, s, index)
		consScope := newScope(s, scopeBlock)
		errs = append(errs, validateBlock(v.Consequent, consScope)...)
		if v.Alternate != nil {
			altScope := newScope(s, scopeBlock)
			errs = append(errs, validateBlock(v.Alternate, altScope)...)
		}
		return errs
	case *ir.WhileStatement:
		errs := checkExpr(v.Test, s, index)
		bodyScope := newScope(s, scopeBlock)
		errs = append(errs, validateBlock(v.Body, bodyScope)...)
		return errs
	case *ir.ForOfStatement:
		errs := checkExpr(v.Iterable, s, index)
		bodyScope := newScope(s, scopeBlock)
		bodyScope.decls[v.Variable] = declaration{index: -1, pos: v.Meta}
		errs = append(errs, validateBlock(v.Body, bodyScope)...)
		return errs
	case *ir.FnFunctionDeclaration:
		return checkFunctionLike(v.Params, v.Body, s, v.Meta)
	case *ir.ClassDeclaration:
		return checkClass(v, s)
	}
	return nil
}

// checkFunctionLike validates one function/method/arrow body in its own
// function scope, with params pre-declared at index -1 so they can
// never be TDZ'd but duplicate parameter names still raise
// CodeDuplicateDecl.
func checkFunctionLike(params []ir.Node, body []ir.Node, parent *scope, meta ast.Position) []*hqlerrors.Diagnostic {
	fnScope := newScope(parent, scopeFunction)
	var errs []*hqlerrors.Diagnostic
	for _, p := range params {
		for _, b := range flattenPattern(p) {
			if err := fnScope.declare(b.name, -1, b.node.Pos()); err != nil {
				errs = append(errs, err)
			}
		}
		if ap, ok := p.(*ir.AssignmentPattern); ok {
			errs = append(errs, checkExpr(ap.Right, fnScope, -1)...)
		}
	}
	errs = append(errs, validateBlock(body, fnScope)...)
	return errs
}

// checkClass validates a class body: method names are declared into
// their own scope (spec §4.8 names "class body" as a scope kind),
// static and instance members kept in separate namespaces since JS lets
// a class declare both an instance and a static member under the same
// name, then each method's body is checked as its own function scope.
func checkClass(cls *ir.ClassDeclaration, parent *scope) []*hqlerrors.Diagnostic {
	instanceScope := newScope(parent, scopeClass)
	staticScope := newScope(parent, scopeClass)
	var errs []*hqlerrors.Diagnostic
	for i, m := range cls.Methods {
		target := instanceScope
		if m.Static {
			target = staticScope
		}
		if err := target.declare(m.Name, i, cls.Meta); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range cls.Methods {
		errs = append(errs, checkFunctionLike(m.Params, m.Body, parent, cls.Meta)...)
	}
	return errs
}
