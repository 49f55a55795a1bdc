package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// binaryOperators maps a variadic prefix operator symbol to its JS binary
// operator. `=`/`!=` lower to `===`/`!==` rather than `==`/`!=` since the
// source language has no implicit coercion.
var binaryOperators = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "mod": "%",
	"=": "===", "!=": "!==", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

var logicalOperators = map[string]string{
	"and": "&&", "or": "||",
}

// lowerBinaryFold left-folds a variadic operator form, e.g. `(+ a b c)`
// into `((a + b) + c)`.
func lowerBinaryFold(op string, list *ast.List) (ir.Node, error) {
	args := list.Tail()
	if len(args) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, list.Head()+" requires at least two operands", list.Meta)
	}
	left, err := lowerExpr(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		right, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		left = &ir.BinaryExpression{Operator: op, Left: left, Right: right, Meta: list.Meta}
	}
	return left, nil
}

func lowerLogicalFold(op string, list *ast.List) (ir.Node, error) {
	args := list.Tail()
	if len(args) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, list.Head()+" requires at least two operands", list.Meta)
	}
	left, err := lowerExpr(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		right, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		left = &ir.LogicalExpression{Operator: op, Left: left, Right: right, Meta: list.Meta}
	}
	return left, nil
}

func lowerNot(list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "not requires exactly one argument", list.Meta)
	}
	arg, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	return &ir.UnaryExpression{Operator: "!", Argument: arg, Meta: list.Meta}, nil
}
