// Package macro implements the macro expander (component C6):
// registration of `macro` definitions, fixpoint expansion with call-site
// meta propagation, and the quasi-quote/auto-gensym machinery it shares
// with the macro-time interpreter.
package macro

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/env"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/interp"
)

// RegisterTopLevelMacros scans forms for `(macro NAME [params...] body...)`
// definitions and registers each as a user macro sourced from
// e.CurrentFilePath() (spec §4.5 step 1).
func RegisterTopLevelMacros(forms []ast.Node, e *env.Environment) error {
	for _, f := range forms {
		if ast.IsForm(f, "macro") {
			if err := registerMacro(f.(*ast.List), e, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterSystemMacros scans forms the same way RegisterTopLevelMacros
// does, but registers each `macro` definition as a system macro:
// globally accessible from any file rather than gated to one source
// file's exports (spec glossary: "a macro provided by the compiler's
// embedded library, globally accessible"). Used by the embedded stdlib
// loader (C16) to install its macros once per Environment.
func RegisterSystemMacros(forms []ast.Node, e *env.Environment) error {
	for _, f := range forms {
		if ast.IsForm(f, "macro") {
			if err := registerMacro(f.(*ast.List), e, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func registerMacro(form *ast.List, e *env.Environment, isSystem bool) error {
	if len(form.Elements) < 3 {
		return hqlerrors.New(hqlerrors.CodeInvalidExpr, "macro requires a name, a parameter vector, and a body", form.Meta)
	}
	name, ok := form.Elements[1].(*ast.Symbol)
	if !ok {
		return hqlerrors.New(hqlerrors.CodeInvalidExpr, "macro name must be a symbol", form.Elements[1].Pos())
	}
	paramVec, ok := form.Elements[2].(*ast.List)
	if !ok || paramVec.Head() != "vector" {
		return hqlerrors.New(hqlerrors.CodeInvalidExpr, "macro requires a parameter vector", form.Elements[2].Pos())
	}

	var params []string
	rest := ""
	tail := paramVec.Tail()
	for i, p := range tail {
		sym, ok := p.(*ast.Symbol)
		if !ok {
			continue
		}
		if sym.IsRestMarker() {
			if i+1 < len(tail) {
				if restSym, ok := tail[i+1].(*ast.Symbol); ok {
					rest = restSym.Name
				}
			}
			break
		}
		params = append(params, sym.Name)
	}

	body := form.Elements[3:]
	fn := makeMacroFn(params, rest, body)
	e.Registry().DefineMacro(name.Name, fn, isSystem, e.CurrentFilePath())
	return nil
}

// makeMacroFn builds an env.MacroFn that binds args positionally (spec
// §4.5: "A macro defined as (macro NAME [p1 ... & rest] body...) binds
// parameters positionally; rest captures the remaining argument SExp as
// a list tagged as a rest-splice"), evaluates body in the macro-time
// interpreter via the scope-chain bridge, and returns the last
// expression's SExp result.
func makeMacroFn(params []string, rest string, body []ast.Node) env.MacroFn {
	return func(args []ast.Node, e *env.Environment) (ast.Node, error) {
		if rest == "" && len(args) != len(params) {
			return nil, hqlerrors.New(hqlerrors.CodeMacroExpansionFailed,
				"wrong number of arguments to macro", callPos(args))
		}
		if rest != "" && len(args) < len(params) {
			return nil, hqlerrors.New(hqlerrors.CodeMacroExpansionFailed,
				"wrong number of arguments to macro", callPos(args))
		}

		scope := interp.FlattenEnvironment(e).Child()
		for i, p := range params {
			scope.Define(p, interp.Value(args[i]))
		}
		if rest != "" {
			scope.Define(rest, interp.RestSplice{Elements: args[len(params):]})
		}

		var result interp.Value
		for _, expr := range body {
			v, err := interp.Eval(expr, scope)
			if err != nil {
				return nil, hqlerrors.New(hqlerrors.CodeMacroExpansionFailed, err.Error(), expr.Pos()).WithCause(err)
			}
			result = v
		}
		return interp.ValueToNode(result, callPos(args))
	}
}

func callPos(args []ast.Node) ast.Position {
	if len(args) == 0 {
		return ast.Position{}
	}
	return args[0].Pos()
}
