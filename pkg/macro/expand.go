package macro

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/env"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// Options controls one Expand call (spec §4.5).
type Options struct {
	UseCache       bool // set by the compiler driver; Expand does not read it
	IterationLimit int  // default 100
	MaxExpandDepth int  // default 100
	CurrentFile    string
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions(currentFile string) Options {
	return Options{IterationLimit: 100, MaxExpandDepth: 100, CurrentFile: currentFile}
}

// Expand fully expands forms against e, returning the expanded sequence
// with macro-definition forms removed (spec §4.5).
func Expand(forms []ast.Node, e *env.Environment, opts Options) ([]ast.Node, error) {
	if opts.IterationLimit <= 0 {
		opts.IterationLimit = 100
	}
	if opts.MaxExpandDepth <= 0 {
		opts.MaxExpandDepth = 100
	}

	if err := RegisterTopLevelMacros(forms, e); err != nil {
		return nil, err
	}

	current := forms
	for iteration := 0; iteration < opts.IterationLimit; iteration++ {
		next := make([]ast.Node, len(current))
		anyChange := false
		for i, f := range current {
			expanded, changed, err := expandNode(f, e, opts, 0)
			if err != nil {
				return nil, err
			}
			next[i] = expanded
			if changed {
				anyChange = true
			}
		}
		current = next
		if !anyChange {
			return filterDefinitionForms(current), nil
		}
	}

	return nil, hqlerrors.New(hqlerrors.CodeMacroRecursionLimit,
		"macro expansion did not reach a fixpoint within the iteration limit", ast.Position{FilePath: opts.CurrentFile})
}

// expandNode expands n, returning the (possibly identical) result node
// and whether it changed. Reference identity is preserved for unchanged
// nodes so fixpoint detection needs no serialization (spec §4.5).
func expandNode(n ast.Node, e *env.Environment, opts Options, depth int) (ast.Node, bool, error) {
	list, ok := n.(*ast.List)
	if !ok {
		return n, false, nil
	}

	if head, ok := headSymbol(list); ok {
		binding := e.Registry().Lookup(head.Name)
		if binding != nil && e.Registry().IsAccessible(head.Name, currentFileOf(n, opts)) {
			if depth >= opts.MaxExpandDepth {
				return nil, false, hqlerrors.New(hqlerrors.CodeMacroRecursionLimit,
					"macro expansion exceeded the maximum expansion depth", list.Meta)
			}
			expansion, err := binding.Fn(list.Tail(), e)
			if err != nil {
				return nil, false, err
			}
			retagged := ast.RetagMeta(expansion, list.Meta.FilePath)
			result, _, err := expandNode(retagged, e, opts, depth+1)
			if err != nil {
				return nil, false, err
			}
			return result, true, nil
		}
	}

	return expandChildren(list, e, opts, depth)
}

func currentFileOf(n ast.Node, opts Options) string {
	if pos := n.Pos(); pos.Valid() {
		return pos.FilePath
	}
	return opts.CurrentFile
}

func headSymbol(list *ast.List) (*ast.Symbol, bool) {
	if len(list.Elements) == 0 {
		return nil, false
	}
	sym, ok := list.Elements[0].(*ast.Symbol)
	return sym, ok
}

func expandChildren(list *ast.List, e *env.Environment, opts Options, depth int) (ast.Node, bool, error) {
	elements := list.Elements
	changed := false
	for i, el := range list.Elements {
		expanded, elChanged, err := expandNode(el, e, opts, depth)
		if err != nil {
			return nil, false, err
		}
		if elChanged {
			if !changed {
				elements = make([]ast.Node, len(list.Elements))
				copy(elements, list.Elements)
				changed = true
			}
			elements[i] = expanded
		}
	}
	if !changed {
		return list, false, nil
	}
	return &ast.List{Elements: elements, Meta: list.Meta}, true, nil
}

// filterDefinitionForms removes `macro` forms from the fully expanded
// top-level sequence (spec §4.5 step 3).
func filterDefinitionForms(forms []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(forms))
	for _, f := range forms {
		if ast.IsForm(f, "macro") {
			continue
		}
		out = append(out, f)
	}
	return out
}
