package interp

import (
	"fmt"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// NewGlobalScope returns a root Scope pre-populated with the arithmetic,
// comparison, and introspection builtins (spec §4.4).
func NewGlobalScope() *Scope {
	scope := NewScope()
	for name, fn := range builtins {
		scope.Define(name, fn)
	}
	return scope
}

var builtins map[string]Builtin

func init() {
	builtins = map[string]Builtin{
		"+":        arith(func(a, b float64) float64 { return a + b }, 0),
		"-":        subOrNegate,
		"*":        arith(func(a, b float64) float64 { return a * b }, 1),
		"/":        divide,
		"=":        compare(func(c int) bool { return c == 0 }),
		"<":        compare(func(c int) bool { return c < 0 }),
		">":        compare(func(c int) bool { return c > 0 }),
		"<=":       compare(func(c int) bool { return c <= 0 }),
		">=":       compare(func(c int) bool { return c >= 0 }),
		"not":      builtinNot,
		"list?":    builtinIsList,
		"symbol?":  builtinIsSymbol,
		"name":     builtinName,
		"%first":   builtinFirst,
		"%rest":    builtinRest,
		"%length":  builtinLength,
		"%empty?":  builtinEmpty,
		"%nth":     builtinNth,
	}
}

func asNumber(v Value, pos ast.Position) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, hqlerrors.New(hqlerrors.CodeTypeMismatch, fmt.Sprintf("expected a number, got %T", v), pos)
	}
	return f, nil
}

func arith(op func(a, b float64) float64, identity float64) Builtin {
	return func(args []Value) (Value, error) {
		acc := identity
		for _, a := range args {
			n, err := asNumber(a, ast.Position{})
			if err != nil {
				return nil, err
			}
			acc = op(acc, n)
		}
		return acc, nil
	}
}

func subOrNegate(args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "- requires at least one argument", ast.Position{})
	}
	first, err := asNumber(args[0], ast.Position{})
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return -first, nil
	}
	acc := first
	for _, a := range args[1:] {
		n, err := asNumber(a, ast.Position{})
		if err != nil {
			return nil, err
		}
		acc -= n
	}
	return acc, nil
}

func divide(args []Value) (Value, error) {
	if len(args) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "/ requires at least two arguments", ast.Position{})
	}
	acc, err := asNumber(args[0], ast.Position{})
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber(a, ast.Position{})
		if err != nil {
			return nil, err
		}
		acc /= n
	}
	return acc, nil
}

// compare implements a chained comparison over args. Numbers compare
// numerically and strings lexically; two nils compare equal; a bool
// compares equal to the same bool and as greater than anything else. Any
// other pairing (a number against a string, nil against a non-nil value,
// a symbol) is a type error.
func compare(accept func(c int) bool) Builtin {
	return func(args []Value) (Value, error) {
		for i := 0; i+1 < len(args); i++ {
			c, ok := compareValues(args[i], args[i+1])
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "values are not comparable", ast.Position{})
			}
			if !accept(c) {
				return false, nil
			}
		}
		return true, nil
	}
}

func compareValues(a, b Value) (int, bool) {
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1, true
			case as > bs:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if a == nil && b == nil {
		return 0, true
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok && ab == bb {
			return 0, true
		}
		return 1, true
	}
	return 1, false
}

func builtinNot(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "not requires exactly one argument", ast.Position{})
	}
	return !isTruthy(args[0]), nil
}

func builtinIsList(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "list? requires exactly one argument", ast.Position{})
	}
	switch args[0].(type) {
	case *ast.List, []Value, RestSplice:
		return true, nil
	default:
		return false, nil
	}
}

func builtinIsSymbol(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "symbol? requires exactly one argument", ast.Position{})
	}
	_, ok := args[0].(*ast.Symbol)
	return ok, nil
}

// builtinName returns a symbol's bare name string, for macros that need
// to inspect or build new symbols from an existing one's text.
func builtinName(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "name requires exactly one argument", ast.Position{})
	}
	sym, ok := args[0].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "name requires a symbol", ast.Position{})
	}
	return sym.Name, nil
}

// sequenceElements returns v's elements if v is any of the sequence
// shapes %first/%rest/%length/%empty?/%nth operate over: an SExp List,
// a vector-sugar SExp List (head stripped), a runtime []Value, or a
// RestSplice (spec §4.4: "%first, %rest, %length, %empty?, %nth that
// operate on both S-expression lists and runtime sequences").
func sequenceElements(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case *ast.List:
		tail := x.Elements
		if x.Head() == "vector" {
			tail = x.Tail()
		}
		items := make([]Value, len(tail))
		for i, e := range tail {
			items[i] = Value(e)
		}
		return items, true
	case []Value:
		return x, true
	case RestSplice:
		items := make([]Value, len(x.Elements))
		for i, e := range x.Elements {
			items[i] = Value(e)
		}
		return items, true
	default:
		return nil, false
	}
}

func builtinFirst(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "%first requires exactly one argument", ast.Position{})
	}
	items, ok := sequenceElements(args[0])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "%first requires a sequence", ast.Position{})
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func builtinRest(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "%rest requires exactly one argument", ast.Position{})
	}
	items, ok := sequenceElements(args[0])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "%rest requires a sequence", ast.Position{})
	}
	if len(items) == 0 {
		return []Value{}, nil
	}
	return append([]Value{}, items[1:]...), nil
}

func builtinLength(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "%length requires exactly one argument", ast.Position{})
	}
	items, ok := sequenceElements(args[0])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "%length requires a sequence", ast.Position{})
	}
	return float64(len(items)), nil
}

func builtinEmpty(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "%empty? requires exactly one argument", ast.Position{})
	}
	items, ok := sequenceElements(args[0])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "%empty? requires a sequence", ast.Position{})
	}
	return len(items) == 0, nil
}

func builtinNth(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeWrongArity, "%nth requires exactly two arguments", ast.Position{})
	}
	items, ok := sequenceElements(args[0])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, "%nth requires a sequence", ast.Position{})
	}
	idx, err := asNumber(args[1], ast.Position{})
	if err != nil {
		return nil, err
	}
	i := int(idx)
	if i < 0 || i >= len(items) {
		return nil, hqlerrors.New(hqlerrors.CodeTypeMismatch, fmt.Sprintf("%%nth index %d out of range", i), ast.Position{})
	}
	return items[i], nil
}
