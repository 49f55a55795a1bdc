package env

import (
	"fmt"
	"sync"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// MacroRegistry distinguishes system macros (always globally accessible)
// from user macros (per-file, requiring explicit export/import) (spec
// §3/§4.3). It is created once per compilation and shared by every
// Environment node in that compilation's scope chain — Extend() passes
// down the same pointer rather than copying the tables.
type MacroRegistry struct {
	mu sync.Mutex

	macros           map[string]*MacroBinding
	macroSourceFiles map[string]string        // name -> defining file (user macros only)
	exportedMacros   map[string]map[string]bool // file -> set of exported names
	importedMacros   map[string]map[string]bool // file -> set of names imported into it
}

// NewMacroRegistry creates an empty registry.
func NewMacroRegistry() *MacroRegistry {
	return &MacroRegistry{
		macros:           make(map[string]*MacroBinding),
		macroSourceFiles: make(map[string]string),
		exportedMacros:   make(map[string]map[string]bool),
		importedMacros:   make(map[string]map[string]bool),
	}
}

// DefineMacro registers fn under name. System macros are globally
// accessible from any file; user macros record sourceFile so
// IsAccessible can enforce per-file gating (spec §4.3: "System macros go
// to the registry; user macros record sourceFile = currentFilePath").
func (r *MacroRegistry) DefineMacro(name string, fn MacroFn, isSystem bool, sourceFile string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := MacroUser
	if isSystem {
		kind = MacroSystem
		sourceFile = ""
	}
	r.macros[name] = &MacroBinding{Fn: fn, Kind: kind, Name: name, SourceFile: sourceFile}
	if kind == MacroUser {
		r.macroSourceFiles[name] = sourceFile
	}
}

// Lookup returns the macro binding for name, or nil if undefined.
func (r *MacroRegistry) Lookup(name string) *MacroBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.macros[name]
}

// MarkExported records that file exports the user macro name (spec §4.3:
// markMacroExported).
func (r *MacroRegistry) MarkExported(file, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.exportedMacros[file]
	if !ok {
		set = make(map[string]bool)
		r.exportedMacros[file] = set
	}
	set[name] = true
}

// MarkImported records that file has imported the user macro name (spec
// §4.3: markMacroImported).
func (r *MacroRegistry) MarkImported(file, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.importedMacros[file]
	if !ok {
		set = make(map[string]bool)
		r.importedMacros[file] = set
	}
	set[name] = true
}

// ImportUserMacro succeeds only if name is in sourceFile's exported set,
// then records it as imported into importingFile (spec §4.3:
// importUserMacro "Succeeds only if name ∈ exportedMacros[sourceFile]").
func (r *MacroRegistry) ImportUserMacro(name, sourceFile, importingFile string) error {
	r.mu.Lock()
	exported := r.exportedMacros[sourceFile][name]
	r.mu.Unlock()

	if !exported {
		return hqlerrors.New(hqlerrors.CodeExportMissing,
			fmt.Sprintf("macro %q is not exported from %q", name, sourceFile),
			ast.Position{FilePath: importingFile})
	}
	r.MarkImported(importingFile, name)
	return nil
}

// IsAccessible reports whether the macro name, bound in this registry, is
// visible from file (spec §3 invariant: "A macro is accessible in file F
// iff it is a system macro, or sourceFile = F, or F ∈ importedMacros").
func (r *MacroRegistry) IsAccessible(name, file string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, ok := r.macros[name]
	if !ok {
		return false
	}
	if binding.Kind == MacroSystem {
		return true
	}
	if binding.SourceFile == file {
		return true
	}
	return r.importedMacros[file][name]
}
