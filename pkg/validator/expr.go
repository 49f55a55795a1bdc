package validator

import (
	"fmt"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// checkExpr recurses through compound expressions to find every
// identifier reference (spec §4.8: "recurses through compound
// expressions — calls, members, binaries, conditionals, new,
// array/object literals, assignments — to find all identifier
// references"), checking each against scope at the enclosing
// statement's index.
func checkExpr(n ir.Node, s *scope, index int) []*hqlerrors.Diagnostic {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ir.Identifier:
		if d, ok := s.lookupLocal(v.Name); ok && d.index > index {
			return []*hqlerrors.Diagnostic{tdzError(v.Name, d, v.Meta)}
		}
		return nil
	case *ir.Literal:
		return nil
	case *ir.ArrayExpression:
		var out []*hqlerrors.Diagnostic
		for _, e := range v.Elements {
			out = append(out, checkExpr(e, s, index)...)
		}
		return out
	case *ir.ObjectExpression:
		var out []*hqlerrors.Diagnostic
		for _, p := range v.Properties {
			out = append(out, checkExpr(p.Value, s, index)...)
		}
		return out
	case *ir.TemplateLiteral:
		var out []*hqlerrors.Diagnostic
		for _, e := range v.Expressions {
			out = append(out, checkExpr(e, s, index)...)
		}
		return out
	case *ir.BinaryExpression:
		return append(checkExpr(v.Left, s, index), checkExpr(v.Right, s, index)...)
	case *ir.LogicalExpression:
		return append(checkExpr(v.Left, s, index), checkExpr(v.Right, s, index)...)
	case *ir.UnaryExpression:
		return checkExpr(v.Argument, s, index)
	case *ir.ConditionalExpression:
		out := checkExpr(v.Test, s, index)
		out = append(out, checkExpr(v.Consequent, s, index)...)
		out = append(out, checkExpr(v.Alternate, s, index)...)
		return out
	case *ir.CallExpression:
		out := checkExpr(v.Callee, s, index)
		for _, a := range v.Arguments {
			out = append(out, checkExpr(a, s, index)...)
		}
		return out
	case *ir.NewExpression:
		out := checkExpr(v.Callee, s, index)
		for _, a := range v.Arguments {
			out = append(out, checkExpr(a, s, index)...)
		}
		return out
	case *ir.MemberExpression:
		return checkExpr(v.Object, s, index)
	case *ir.InteropIIFE:
		return checkExpr(v.Object, s, index)
	case *ir.SpreadElement:
		return checkExpr(v.Argument, s, index)
	case *ir.AssignmentExpression:
		return append(checkExpr(v.Left, s, index), checkExpr(v.Right, s, index)...)
	case *ir.AssignmentPattern:
		return checkExpr(v.Right, s, index)
	case *ir.ArrowFunctionExpression:
		return checkFunctionLike(v.Params, v.Body, s, v.Meta)
	case *ir.FnFunctionDeclaration:
		// A `fn` used inline as a value (e.g. a callback argument) rather
		// than at statement position; it still introduces its own
		// function scope but binds no name into the enclosing one.
		return checkFunctionLike(v.Params, v.Body, s, v.Meta)
	default:
		return nil
	}
}

// tdzError reports a reference to name before its declaration at
// statement index d.index, with pos the reference's own location (spec
// §4.8: "for every identifier reference in statement index i, if that
// identifier is declared in the same scope at index j > i, raise a TDZ
// error").
func tdzError(name string, d declaration, pos ast.Position) *hqlerrors.Diagnostic {
	msg := fmt.Sprintf(
		"%q is referenced before its declaration at %s:%d:%d",
		name, d.pos.FilePath, d.pos.Line, d.pos.Column,
	)
	return hqlerrors.New(hqlerrors.CodeTemporalDeadZone, msg, pos)
}
