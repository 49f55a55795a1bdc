// Package importer implements the import processor (component C7):
// recognition of import/export forms, module-path classification, the
// cycle-handling algorithm for mutually-importing source files, and the
// symbol-import resolution order against the shared Environment.
package importer

import (
	"fmt"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// ImportedSymbol is one entry of a vector-import list, with an alias
// equal to Name when no `as` clause is present.
type ImportedSymbol struct {
	Name  string
	Alias string
	Pos   ast.Position
}

// ImportForm is a parsed `import` form (spec §4.6). Exactly one of
// Default, Namespace, or Symbols describes the binding shape.
type ImportForm struct {
	Path      string
	Default   bool // (import "path")
	Namespace string // (import name from "path")
	Symbols   []ImportedSymbol // (import [a b, c as d] from "path")
	Pos       ast.Position
}

// ExportForm is a parsed `export` form (spec §4.6). Names is set for the
// vector form; Name/Expr are set for the named-expression form.
type ExportForm struct {
	Names []string // (export [a b])
	Name  string   // (export "name" expr)
	Expr  ast.Node
	Pos   ast.Position
}

// ParseImport reports whether n is an `import` form and parses it.
// matched is false (with a nil error) when n's head is not "import"; an
// import-shaped list that is malformed returns matched=true and a
// diagnostic error.
func ParseImport(n ast.Node) (form *ImportForm, matched bool, err error) {
	list, ok := n.(*ast.List)
	if !ok || list.Head() != "import" {
		return nil, false, nil
	}

	tail := list.Tail()
	switch len(tail) {
	case 1:
		path, ok := stringLiteral(tail[0])
		if !ok {
			return nil, true, invalidImportForm(list.Meta)
		}
		return &ImportForm{Path: path, Default: true, Pos: list.Meta}, true, nil

	case 3:
		fromSym, ok := tail[1].(*ast.Symbol)
		if !ok || fromSym.Name != "from" {
			return nil, true, invalidImportForm(list.Meta)
		}
		path, ok := stringLiteral(tail[2])
		if !ok {
			return nil, true, invalidImportForm(list.Meta)
		}

		switch spec := tail[0].(type) {
		case *ast.Symbol:
			return &ImportForm{Path: path, Namespace: spec.Name, Pos: list.Meta}, true, nil
		case *ast.List:
			if spec.Head() != "vector" {
				return nil, true, invalidImportForm(list.Meta)
			}
			symbols, err := parseImportSymbols(spec.Tail())
			if err != nil {
				return nil, true, err
			}
			return &ImportForm{Path: path, Symbols: symbols, Pos: list.Meta}, true, nil
		default:
			return nil, true, invalidImportForm(list.Meta)
		}

	default:
		return nil, true, invalidImportForm(list.Meta)
	}
}

// parseImportSymbols groups a vector-import's tail into symbols, pairing
// `name as alias` triples and treating every other symbol as its own
// alias.
func parseImportSymbols(tail []ast.Node) ([]ImportedSymbol, error) {
	var out []ImportedSymbol
	for i := 0; i < len(tail); {
		sym, ok := tail[i].(*ast.Symbol)
		if !ok {
			return nil, invalidImportForm(tail[i].Pos())
		}
		if i+2 < len(tail) {
			if asSym, ok := tail[i+1].(*ast.Symbol); ok && asSym.Name == "as" {
				alias, ok := tail[i+2].(*ast.Symbol)
				if !ok {
					return nil, invalidImportForm(tail[i+2].Pos())
				}
				out = append(out, ImportedSymbol{Name: sym.Name, Alias: alias.Name, Pos: sym.Meta})
				i += 3
				continue
			}
		}
		out = append(out, ImportedSymbol{Name: sym.Name, Alias: sym.Name, Pos: sym.Meta})
		i++
	}
	return out, nil
}

// ParseExport reports whether n is an `export` form and parses it.
func ParseExport(n ast.Node) (form *ExportForm, matched bool, err error) {
	list, ok := n.(*ast.List)
	if !ok || list.Head() != "export" {
		return nil, false, nil
	}

	tail := list.Tail()
	switch len(tail) {
	case 1:
		vec, ok := tail[0].(*ast.List)
		if !ok || vec.Head() != "vector" {
			return nil, true, invalidImportForm(list.Meta)
		}
		var names []string
		for _, el := range vec.Tail() {
			sym, ok := el.(*ast.Symbol)
			if !ok {
				return nil, true, invalidImportForm(el.Pos())
			}
			names = append(names, sym.Name)
		}
		return &ExportForm{Names: names, Pos: list.Meta}, true, nil

	case 2:
		name, ok := stringLiteral(tail[0])
		if !ok {
			return nil, true, invalidImportForm(list.Meta)
		}
		return &ExportForm{Name: name, Expr: tail[1], Pos: list.Meta}, true, nil

	default:
		return nil, true, invalidImportForm(list.Meta)
	}
}

func stringLiteral(n ast.Node) (string, bool) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}

func invalidImportForm(pos ast.Position) error {
	return hqlerrors.New(hqlerrors.CodeInvalidImportForm,
		fmt.Sprintf("malformed import/export form at %s:%d:%d", pos.FilePath, pos.Line, pos.Column), pos)
}
