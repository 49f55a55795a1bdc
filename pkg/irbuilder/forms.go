package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/importer"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// lowerImport turns an already-parsed import form into its runtime-surface
// shape; the compile-time effects of the same form (environment bindings,
// macro registry entries) were already applied by pkg/importer.
func lowerImport(imp *importer.ImportForm) ir.Node {
	var specs []ir.ImportSpecifier
	switch {
	case imp.Default:
		specs = []ir.ImportSpecifier{{Local: importer.DefaultBindingName(imp.Path), Default: true}}
	case imp.Namespace != "":
		specs = []ir.ImportSpecifier{{Local: imp.Namespace, Namespace: true}}
	default:
		specs = make([]ir.ImportSpecifier, 0, len(imp.Symbols))
		for _, s := range imp.Symbols {
			specs = append(specs, ir.ImportSpecifier{Imported: s.Name, Local: s.Alias})
		}
	}
	return &ir.ImportDeclaration{Specifiers: specs, Source: imp.Path, Meta: imp.Pos}
}

func lowerExport(exp *importer.ExportForm) (ir.Node, error) {
	if len(exp.Names) > 0 {
		return &ir.ExportNamedDeclaration{Names: exp.Names, Meta: exp.Pos}, nil
	}
	value, err := lowerExpr(exp.Expr)
	if err != nil {
		return nil, err
	}
	return &ir.ExportNamedExpr{Name: exp.Name, Value: value, Meta: exp.Pos}, nil
}
