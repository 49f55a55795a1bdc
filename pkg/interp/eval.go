package interp

import (
	"fmt"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// Eval evaluates one SExp node in scope, returning its Value (spec §4.4).
func Eval(n ast.Node, scope *Scope) (Value, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return literalToValue(v), nil
	case *ast.Symbol:
		if val, ok := scope.Get(v.Name); ok {
			return val, nil
		}
		return nil, hqlerrors.New(hqlerrors.CodeUndefinedVariable,
			fmt.Sprintf("undefined variable %q", v.Name), v.Meta)
	case *ast.List:
		return evalList(v, scope)
	default:
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "cannot evaluate unknown node kind", ast.Position{})
	}
}

func literalToValue(l *ast.Literal) Value {
	switch l.Kind {
	case ast.LitNull:
		return nil
	case ast.LitBool:
		return l.Value.(bool)
	case ast.LitInt:
		return float64(l.Value.(int64))
	case ast.LitFloat:
		return l.Value.(float64)
	case ast.LitString:
		return l.Value.(string)
	default:
		return nil
	}
}

func evalList(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) == 0 {
		return []Value{}, nil
	}

	if head, ok := list.Elements[0].(*ast.Symbol); ok {
		if fn, ok := specialForms[head.Name]; ok {
			return fn(list, scope)
		}
	}

	callee, err := Eval(list.Elements[0], scope)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(list.Elements)-1)
	for _, a := range list.Elements[1:] {
		av, err := Eval(a, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, av)
	}
	return Apply(callee, args, list.Meta)
}

// Apply invokes callee (a Closure or Builtin) with args.
func Apply(callee Value, args []Value, pos ast.Position) (Value, error) {
	switch fn := callee.(type) {
	case Builtin:
		return fn(args)
	case *Closure:
		child := fn.Env.Child()
		if fn.Rest == "" && len(args) != len(fn.Params) {
			return nil, hqlerrors.New(hqlerrors.CodeWrongArity,
				fmt.Sprintf("expected %d arguments, got %d", len(fn.Params), len(args)), pos)
		}
		if fn.Rest != "" && len(args) < len(fn.Params) {
			return nil, hqlerrors.New(hqlerrors.CodeWrongArity,
				fmt.Sprintf("expected at least %d arguments, got %d", len(fn.Params), len(args)), pos)
		}
		for i, p := range fn.Params {
			child.Define(p, args[i])
		}
		if fn.Rest != "" {
			child.Define(fn.Rest, append([]Value{}, args[len(fn.Params):]...))
		}
		var result Value
		for _, expr := range fn.Body {
			v, err := Eval(expr, child)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil
	default:
		return nil, hqlerrors.New(hqlerrors.CodeNotCallable, "value is not callable", pos)
	}
}

type specialForm func(list *ast.List, scope *Scope) (Value, error)

var specialForms map[string]specialForm

func init() {
	specialForms = map[string]specialForm{
		"if":                evalIf,
		"cond":              evalCond,
		"let":               evalLet,
		"var":               evalVar,
		"quote":             evalQuote,
		"quasiquote":        evalQuasiquote,
		"fn":                evalFn,
	}
}

// evalIf: (if test then else?)
func evalIf(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) < 3 || len(list.Elements) > 4 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "if requires (if test then else?)", list.Meta)
	}
	test, err := Eval(list.Elements[1], scope)
	if err != nil {
		return nil, err
	}
	if isTruthy(test) {
		return Eval(list.Elements[2], scope)
	}
	if len(list.Elements) == 4 {
		return Eval(list.Elements[3], scope)
	}
	return nil, nil
}

// evalCond: (cond [test1 expr1] [test2 expr2] ... [:else exprN])
func evalCond(list *ast.List, scope *Scope) (Value, error) {
	for _, clause := range list.Elements[1:] {
		pair, ok := clause.(*ast.List)
		if !ok || pair.Head() != "vector" || len(pair.Tail()) != 2 {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "cond clause must be [test expr]", clause.Pos())
		}
		testForm := pair.Tail()[0]
		if sym, ok := testForm.(*ast.Symbol); ok && sym.Name == ":else" {
			return Eval(pair.Tail()[1], scope)
		}
		test, err := Eval(testForm, scope)
		if err != nil {
			return nil, err
		}
		if isTruthy(test) {
			return Eval(pair.Tail()[1], scope)
		}
	}
	return nil, nil
}

// evalLet: (let [name1 val1 name2 val2 ...] body...) — introduces a child
// scope so bindings do not leak to the caller, unlike `var`.
func evalLet(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "let requires a binding vector", list.Meta)
	}
	bindings, ok := list.Elements[1].(*ast.List)
	if !ok || bindings.Head() != "vector" {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "let requires a binding vector", list.Meta)
	}
	pairs := bindings.Tail()
	if len(pairs)%2 != 0 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "let binding vector must have an even number of forms", bindings.Meta)
	}

	child := scope.Child()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(*ast.Symbol)
		if !ok {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "let binding name must be a symbol", pairs[i].Pos())
		}
		v, err := Eval(pairs[i+1], child)
		if err != nil {
			return nil, err
		}
		child.Define(name.Name, v)
	}

	var result Value
	for _, expr := range list.Elements[2:] {
		v, err := Eval(expr, child)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// evalVar: (var name value) — binds in the *current* scope (spec §4.4:
// "required for gensym-in-macro").
func evalVar(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) != 3 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "var requires (var name value)", list.Meta)
	}
	name, ok := list.Elements[1].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "var name must be a symbol", list.Elements[1].Pos())
	}
	v, err := Eval(list.Elements[2], scope)
	if err != nil {
		return nil, err
	}
	scope.Define(name.Name, v)
	return v, nil
}

// evalQuote: (quote x) returns x unevaluated.
func evalQuote(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "quote requires exactly one argument", list.Meta)
	}
	return list.Elements[1], nil
}

// evalFn: (fn [p1 p2 & rest] body...) constructs a Closure closing over
// the defining scope.
func evalFn(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "fn requires a parameter vector", list.Meta)
	}
	idx := 1
	if _, ok := list.Elements[1].(*ast.Symbol); ok {
		idx = 2 // named fn: (fn name [params] body...)
	}
	params, ok := list.Elements[idx].(*ast.List)
	if !ok || params.Head() != "vector" {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "fn requires a parameter vector", list.Meta)
	}

	var names []string
	rest := ""
	for i, p := range params.Tail() {
		sym, ok := p.(*ast.Symbol)
		if !ok {
			continue
		}
		if sym.IsRestMarker() {
			if i+1 < len(params.Tail()) {
				if restSym, ok := params.Tail()[i+1].(*ast.Symbol); ok {
					rest = restSym.Name
				}
			}
			break
		}
		names = append(names, sym.Name)
	}

	return &Closure{Params: names, Rest: rest, Body: list.Elements[idx+1:], Env: scope}, nil
}

func isTruthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}
