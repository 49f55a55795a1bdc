package interp

import (
	"math"
	"strconv"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// evalQuasiquote: (quasiquote x). The outer backtick establishes depth 0
// for its immediate content (spec §4.5).
func evalQuasiquote(list *ast.List, scope *Scope) (Value, error) {
	if len(list.Elements) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "quasiquote requires exactly one argument", list.Meta)
	}
	return quasiquoteExpand(list.Elements[1], scope, 0, newGensymTable())
}

func newGensymTable() map[string]*ast.Symbol {
	return make(map[string]*ast.Symbol)
}

// gensymFor returns the fresh symbol mapped to a gensym-template symbol
// (e.g. "tmp#") within table, creating one on first use so every
// occurrence of the same template within one quasi-quote maps to the
// same fresh symbol (spec §4.5: "All occurrences of the same foo# within
// the same template map to the same fresh symbol"). The fresh number
// comes from scope's gensym counter, not a process-global one, so
// numbering only depends on expansion order within the current
// compilation (spec §8/§9).
func gensymFor(template *ast.Symbol, table map[string]*ast.Symbol, scope *Scope) *ast.Symbol {
	if existing, ok := table[template.Name]; ok {
		return existing
	}
	n := scope.nextGensym()
	prefix := template.Name[:len(template.Name)-1]
	fresh := ast.Sym(prefix+"__gensym"+strconv.Itoa(n), template.Meta)
	table[template.Name] = fresh
	return fresh
}

// quasiquoteExpand recursively builds the quoted SExp, substituting
// unquote/unquote-splicing at depth 0 and rewriting gensym-template
// symbols (spec §4.5).
func quasiquoteExpand(n ast.Node, scope *Scope, depth int, gensyms map[string]*ast.Symbol) (ast.Node, error) {
	switch v := n.(type) {
	case *ast.Symbol:
		if v.IsGensymTemplate() {
			return gensymFor(v, gensyms, scope), nil
		}
		return v, nil
	case *ast.Literal:
		return v, nil
	case *ast.List:
		switch v.Head() {
		case "quasiquote":
			if len(v.Elements) == 2 {
				inner, err := quasiquoteExpand(v.Elements[1], scope, depth+1, newGensymTable())
				if err != nil {
					return nil, err
				}
				return &ast.List{Elements: []ast.Node{v.Elements[0], inner}, Meta: v.Meta}, nil
			}
		case "unquote":
			if len(v.Elements) == 2 {
				if depth == 0 {
					val, err := Eval(v.Elements[1], scope)
					if err != nil {
						return nil, err
					}
					return valueToNode(val, v.Meta)
				}
				inner, err := quasiquoteExpand(v.Elements[1], scope, depth-1, gensyms)
				if err != nil {
					return nil, err
				}
				return &ast.List{Elements: []ast.Node{v.Elements[0], inner}, Meta: v.Meta}, nil
			}
		}
		elements, err := expandListElements(v.Elements, scope, depth, gensyms)
		if err != nil {
			return nil, err
		}
		return &ast.List{Elements: elements, Meta: v.Meta}, nil
	default:
		return n, nil
	}
	return n, nil
}

// expandListElements walks a list's elements, recognizing
// unquote-splicing at depth 0 as a multi-element substitution rather
// than a single recursive expansion (spec §4.5).
func expandListElements(elements []ast.Node, scope *Scope, depth int, gensyms map[string]*ast.Symbol) ([]ast.Node, error) {
	var out []ast.Node
	for _, e := range elements {
		list, ok := e.(*ast.List)
		if ok && list.Head() == "unquote-splicing" && len(list.Elements) == 2 {
			if depth == 0 {
				val, err := Eval(list.Elements[1], scope)
				if err != nil {
					return nil, err
				}
				items, err := spliceItems(val, list.Meta)
				if err != nil {
					return nil, err
				}
				out = append(out, items...)
				continue
			}
			inner, err := quasiquoteExpand(list.Elements[1], scope, depth-1, gensyms)
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.List{Elements: []ast.Node{list.Elements[0], inner}, Meta: list.Meta})
			continue
		}
		expanded, err := quasiquoteExpand(e, scope, depth, gensyms)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// spliceItems extracts the elements to splice from an unquote-splicing
// argument's evaluated value: a plain SExp list, a vector-sugar SExp
// list (its "vector" head is stripped first), a runtime []Value list, or
// a RestSplice (spec §4.5).
func spliceItems(val Value, pos ast.Position) ([]ast.Node, error) {
	switch v := val.(type) {
	case RestSplice:
		return v.Elements, nil
	case *ast.List:
		if v.Head() == "vector" {
			return v.Tail(), nil
		}
		return v.Elements, nil
	case []Value:
		items := make([]ast.Node, 0, len(v))
		for _, e := range v {
			node, err := valueToNode(e, pos)
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		}
		return items, nil
	default:
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "unquote-splicing requires a list value", pos)
	}
}

// ValueToNode converts an evaluated runtime Value back into an SExp
// node. Exported for the macro expander, which must convert a macro
// body's final result back into SExp (spec §4.5: "Body expressions are
// evaluated for their SExp result").
func ValueToNode(v Value, pos ast.Position) (ast.Node, error) {
	return valueToNode(v, pos)
}

// valueToNode converts an evaluated runtime Value back into an SExp node
// for embedding into quasi-quoted code.
func valueToNode(v Value, pos ast.Position) (ast.Node, error) {
	switch x := v.(type) {
	case nil:
		return &ast.Literal{Kind: ast.LitNull, Value: nil, Meta: pos}, nil
	case bool:
		return &ast.Literal{Kind: ast.LitBool, Value: x, Meta: pos}, nil
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x <= math.MaxInt64 {
			return &ast.Literal{Kind: ast.LitInt, Value: int64(x), Meta: pos}, nil
		}
		return &ast.Literal{Kind: ast.LitFloat, Value: x, Meta: pos}, nil
	case string:
		return ast.Str(x, pos), nil
	case ast.Node:
		return x, nil
	case []Value:
		elements := make([]ast.Node, 0, len(x))
		for _, e := range x {
			node, err := valueToNode(e, pos)
			if err != nil {
				return nil, err
			}
			elements = append(elements, node)
		}
		return &ast.List{Elements: elements, Meta: pos}, nil
	case RestSplice:
		return &ast.List{Elements: x.Elements, Meta: pos}, nil
	default:
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "value cannot be embedded in quoted code", pos)
	}
}
