// Package stdlib implements the embedded stdlib loader (C16, spec §4.6
// module path kind "embedded stdlib (@hql/…)"): a Go embed.FS bundling
// the HQL source files an "@hql/…" import resolves to, plus the
// system-macro installer the compiler driver's setupEnv step calls once
// per Environment.
//
// The embedded modules are ordinary HQL source (spec's explicit
// Non-goal: "standard-library implementation" — the stdlib's own
// functions, not this loader, would carry that semantics). This package
// supplies bytes and macro registration only.
package stdlib

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/env"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/importer"
	"github.com/hlvm-dev/hql/pkg/macro"
	"github.com/hlvm-dev/hql/pkg/reader"
	"github.com/hlvm-dev/hql/pkg/syntax"
)

//go:embed src/*.hql
var embedded embed.FS

// ResolveEmbedded returns the source text an "@hql/name" import resolves
// to, keyed by the path segment after the "@hql/" prefix.
func ResolveEmbedded(name string) (string, error) {
	data, err := embedded.ReadFile("src/" + name + ".hql")
	if err != nil {
		return "", hqlerrors.New(hqlerrors.CodeModuleNotFound,
			"no embedded stdlib module named \"@hql/"+name+"\"", ast.Position{})
	}
	return string(data), nil
}

// Loader implements pkg/compiler.StdlibLoader and (for ModuleEmbedded
// paths) pkg/importer.OpaqueLoader.
type Loader struct{}

// New returns a Loader. It carries no state: every embedded module's
// bytes come from the compiled-in embed.FS.
func New() *Loader { return &Loader{} }

func parseModule(name, src string) ([]ast.Node, error) {
	raw, err := reader.Read([]byte(src), "@hql/"+name)
	if err != nil {
		return nil, err
	}
	forms := make([]ast.Node, len(raw))
	for i, f := range raw {
		t, err := syntax.Transform(f)
		if err != nil {
			return nil, err
		}
		forms[i] = t
	}
	return forms, nil
}

// coreModules lists the embedded modules whose macros are always
// globally visible (spec §4.10: "load embedded stdlib macros once per
// env"), independent of whether a file ever imports "@hql/...".
var coreModules = []string{"core", "assert"}

// LoadMacros registers every core embedded module's macros into e as
// system macros. Called once per Environment by the compiler driver's
// setupEnv step.
func (l *Loader) LoadMacros(e *env.Environment) error {
	for _, name := range coreModules {
		src, err := ResolveEmbedded(name)
		if err != nil {
			return err
		}
		forms, err := parseModule(name, src)
		if err != nil {
			return err
		}
		if err := macro.RegisterSystemMacros(forms, e); err != nil {
			return err
		}
	}
	return nil
}

// LoadOpaque implements importer.OpaqueLoader for ModuleEmbedded paths:
// an explicit `(import x from "@hql/name")` gets that single module's
// macros back as a name->value mapping, without touching e's global
// macro table (spec §4.6: "Non-source modules are loaded as opaque
// mappings").
func (l *Loader) LoadOpaque(ctx context.Context, path string, kind importer.ModuleKind) (map[string]env.Value, error) {
	if kind != importer.ModuleEmbedded {
		return nil, hqlerrors.New(hqlerrors.CodeModuleNotFound,
			"stdlib loader only resolves embedded stdlib modules, got "+kind.String(), ast.Position{FilePath: path})
	}
	name := strings.TrimPrefix(path, "@hql/")

	src, err := ResolveEmbedded(name)
	if err != nil {
		return nil, err
	}
	forms, err := parseModule(name, src)
	if err != nil {
		return nil, err
	}

	scratch := env.New().WithFilePath(path)
	if err := macro.RegisterSystemMacros(forms, scratch); err != nil {
		return nil, err
	}

	exports := make(map[string]env.Value)
	for _, f := range forms {
		if !ast.IsForm(f, "macro") {
			continue
		}
		list := f.(*ast.List)
		if sym, ok := list.Elements[1].(*ast.Symbol); ok {
			if binding := scratch.Registry().Lookup(sym.Name); binding != nil {
				exports[sym.Name] = binding.Fn
			}
		}
	}
	return exports, nil
}

// moduleNames lists the embedded modules available for "@hql/…"
// imports, in directory order, for tooling that wants to enumerate the
// stdlib (e.g. a future `hqlc` help command).
func moduleNames() ([]string, error) {
	entries, err := fs.ReadDir(embedded, "src")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".hql"))
	}
	return names, nil
}
