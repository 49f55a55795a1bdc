package irbuilder

import (
	"strings"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// lowerFnDeclaration lowers `(fn name? [params] body…)` (spec §4.7). A
// missing name names it "__anon"; pkg/syntax already rewrites every `=>`
// arrow to a named `fn` before this stage runs, so every surviving `fn` is
// either user-named or already carries that synthetic name.
func lowerFnDeclaration(list *ast.List) (*ir.FnFunctionDeclaration, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "fn requires a parameter vector", list.Meta)
	}
	idx := 1
	name := "__anon"
	if sym, ok := list.Elements[1].(*ast.Symbol); ok {
		name = sym.Name
		idx = 2
	}
	if idx >= len(list.Elements) {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "fn requires a parameter vector", list.Meta)
	}

	params, usesJSON, jsonKeys, jsonDefaults, err := lowerParams(list.Elements[idx])
	if err != nil {
		return nil, err
	}
	body, err := lowerFunctionBody(list.Elements[idx+1:])
	if err != nil {
		return nil, err
	}
	return &ir.FnFunctionDeclaration{
		Name:              name,
		Params:            params,
		UsesJSONMapParams: usesJSON,
		JSONMapKeys:       jsonKeys,
		JSONMapDefaults:   jsonDefaults,
		Body:              body,
		Meta:              list.Meta,
	}, nil
}

// lowerParams lowers a parameter vector, or — when the parameter list is
// itself a map form `{ k: default … }` — records the JSON-map-parameter
// case instead (spec §4.7: "emit usesJsonMapParams = true; at emission
// time a single parameter __hql_params = {} destructures each key via ??
// to produce the declared name"). The destructuring statements themselves
// are an emission-time concern, so only the declared keys and their
// default expressions are recorded here.
func lowerParams(n ast.Node) ([]ir.Node, bool, []string, []ir.Node, error) {
	list, ok := n.(*ast.List)
	if !ok {
		return nil, false, nil, nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "expected a parameter vector", n.Pos())
	}
	if list.Head() == "hash-map" {
		keys, defaults, err := jsonMapKeys(list)
		if err != nil {
			return nil, false, nil, nil, err
		}
		return nil, true, keys, defaults, nil
	}
	if list.Head() != "vector" {
		return nil, false, nil, nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "expected a parameter vector", n.Pos())
	}

	tail := list.Tail()
	var params []ir.Node
	for i := 0; i < len(tail); i++ {
		e := tail[i]
		if sym, ok := e.(*ast.Symbol); ok && sym.IsRestMarker() {
			if i+1 < len(tail) {
				if restSym, ok := tail[i+1].(*ast.Symbol); ok {
					params = append(params, &ir.RestElement{
						Argument: &ir.Identifier{Name: restSym.Name, Meta: restSym.Meta},
						Meta:     restSym.Meta,
					})
				}
			}
			break
		}
		if sub, ok := e.(*ast.List); ok && len(sub.Elements) == 2 {
			if nameSym, ok := sub.Elements[0].(*ast.Symbol); ok {
				def, err := lowerExpr(sub.Elements[1])
				if err != nil {
					return nil, false, nil, nil, err
				}
				params = append(params, &ir.AssignmentPattern{
					Left:  &ir.Identifier{Name: nameSym.Name, Meta: nameSym.Meta},
					Right: def,
					Meta:  sub.Meta,
				})
				continue
			}
		}
		if sym, ok := e.(*ast.Symbol); ok {
			params = append(params, &ir.Identifier{Name: sym.Name, Meta: sym.Meta})
			continue
		}
		return nil, false, nil, nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "unsupported parameter form", e.Pos())
	}
	return params, false, nil, nil, nil
}

// jsonMapKeys collects a JSON-map parameter list's declared keys paired
// with each key's default expression (nil if the pair's value is itself
// absent, which jsonMapKeys never produces since the list must have an
// even number of forms — every key has a paired default form).
func jsonMapKeys(m *ast.List) ([]string, []ir.Node, error) {
	pairs := m.Tail()
	if len(pairs)%2 != 0 {
		return nil, nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "JSON-map parameter list must have an even number of forms", m.Meta)
	}
	keys := make([]string, 0, len(pairs)/2)
	defaults := make([]ir.Node, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := keyName(pairs[i])
		if !ok {
			return nil, nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "JSON-map parameter key must be a keyword or string", pairs[i].Pos())
		}
		def, err := lowerExpr(pairs[i+1])
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		defaults = append(defaults, def)
	}
	return keys, defaults, nil
}

// keyName extracts a hash-map key's name, accepting both the keyword
// style (`:a`, a symbol) and the JSON style (`"a"`, a string literal) the
// reader's readSugarList admits for `{...}` forms.
func keyName(n ast.Node) (string, bool) {
	switch v := n.(type) {
	case *ast.Symbol:
		return strings.TrimPrefix(v.Name, ":"), true
	case *ast.Literal:
		if v.Kind == ast.LitString {
			return v.Value.(string), true
		}
	}
	return "", false
}
