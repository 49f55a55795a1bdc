// Package irbuilder lowers canonical SExp — after macro expansion and
// import processing have run — into the pkg/ir tree (C8, spec §4.7).
package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/importer"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// Build lowers a whole file's top-level forms into a Program.
func Build(forms []ast.Node) (*ir.Program, error) {
	body, err := lowerBody(forms)
	if err != nil {
		return nil, err
	}
	var pos ast.Position
	if len(forms) > 0 {
		pos = forms[0].Pos()
	}
	return &ir.Program{Body: body, Meta: pos}, nil
}

// lowerBody lowers a sequence of top-level or block forms, splicing a
// `do` block's own forms in place rather than wrapping them (spec §4.7:
// "do ... lower to JS equivalents" — `do` carries no scope of its own).
func lowerBody(forms []ast.Node) ([]ir.Node, error) {
	var out []ir.Node
	for _, f := range forms {
		if ast.IsForm(f, "do") {
			spliced, err := lowerBody(f.(*ast.List).Tail())
			if err != nil {
				return nil, err
			}
			out = append(out, spliced...)
			continue
		}
		stmt, err := lowerTopLevelOrStatement(f)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

// lowerTopLevelOrStatement recognizes import/export forms before falling
// back to ordinary statement lowering. Reusing pkg/importer's parsers here
// (rather than re-deriving the same form shapes) keeps the two packages'
// idea of "what counts as an import/export form" from drifting apart.
func lowerTopLevelOrStatement(n ast.Node) (ir.Node, error) {
	if imp, ok, err := importer.ParseImport(n); err != nil {
		return nil, err
	} else if ok {
		return lowerImport(imp), nil
	}
	if exp, ok, err := importer.ParseExport(n); err != nil {
		return nil, err
	} else if ok {
		return lowerExport(exp)
	}
	return lowerStatement(n)
}
