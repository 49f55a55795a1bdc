package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/env"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// SourceCompiler recursively compiles a local ".hql" dependency and
// returns the name->value bindings it exports. Implemented by the
// compiler driver (C11), which alone wires the full C2-C10 pipeline;
// this package depends on it only through this interface so C7 can be
// built and tested before C11 exists.
type SourceCompiler interface {
	CompileModule(ctx context.Context, path string, e *env.Environment) (map[string]env.Value, error)
}

// OpaqueLoader loads a non-source module (a .js/.ts target, the embedded
// stdlib, or a remote specifier) as an opaque name->value mapping,
// without running it through the HQL pipeline (spec §4.6: "Non-source
// modules are loaded as opaque mappings").
type OpaqueLoader interface {
	LoadOpaque(ctx context.Context, path string, kind ModuleKind) (map[string]env.Value, error)
}

// Processor resolves import/export forms' compile-time effects. Import
// and export forms are never removed from a form sequence: C8 still
// lowers them into real ECMAScript import/export statements. This
// package only establishes the compile-time bindings and macro
// visibility those statements imply, plus the recursive-compile and
// cycle-handling side effects.
type Processor struct {
	Compiler SourceCompiler
	Loader   OpaqueLoader
}

// New builds a Processor. Either dependency may be nil; a nil Compiler
// rejects source imports, a nil Loader rejects everything else, both
// with CodeModuleNotFound rather than a panic, so a partially-wired
// driver still fails with a diagnostic instead of crashing.
func New(compiler SourceCompiler, loader OpaqueLoader) *Processor {
	return &Processor{Compiler: compiler, Loader: loader}
}

// Process walks forms in source order, performing the compile-time
// effects of every import/export form against e (spec §4.6). Remote
// imports appearing anywhere in forms are prefetched concurrently before
// the sequential walk begins; local source imports are always resolved
// one at a time, in order, so top-level definition order stays
// deterministic (spec §4.6 "Concurrency contract").
func (p *Processor) Process(ctx context.Context, forms []ast.Node, e *env.Environment) error {
	currentFile := e.CurrentFilePath()

	prefetched, err := p.prefetchRemote(ctx, collectRemotePaths(forms))
	if err != nil {
		return err
	}

	for _, f := range forms {
		if imp, matched, err := ParseImport(f); err != nil {
			return err
		} else if matched {
			if err := p.processImport(ctx, imp, e, currentFile, prefetched); err != nil {
				return err
			}
			continue
		}
		if exp, matched, err := ParseExport(f); err != nil {
			return err
		} else if matched {
			if err := p.processExport(exp, e, currentFile); err != nil {
				return err
			}
			continue
		}
	}
	return nil
}

func collectRemotePaths(forms []ast.Node) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, f := range forms {
		imp, matched, err := ParseImport(f)
		if err != nil || !matched {
			continue
		}
		if ClassifyPath(imp.Path) == ModuleRemote && !seen[imp.Path] {
			seen[imp.Path] = true
			paths = append(paths, imp.Path)
		}
	}
	return paths
}

// prefetchRemote fetches every distinct remote path concurrently (spec
// §4.6: "Remote imports within one file may be fetched in parallel"),
// mirroring the teacher's WorkspaceBuilder.buildParallel fan-out-then-wait
// shape (pkg/build/workspace.go) with a WaitGroup and mutex-guarded
// result map instead of a job-level build result.
func (p *Processor) prefetchRemote(ctx context.Context, paths []string) (map[string]map[string]env.Value, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if p.Loader == nil {
		return nil, hqlerrors.New(hqlerrors.CodeModuleNotFound,
			fmt.Sprintf("no loader configured for remote module %q", paths[0]), ast.Position{})
	}

	results := make(map[string]map[string]env.Value, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(chan error, len(paths))

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			exports, err := p.Loader.LoadOpaque(ctx, path, ModuleRemote)
			if err != nil {
				errs <- hqlerrors.New(hqlerrors.CodeRemoteFetchFailed,
					fmt.Sprintf("failed to fetch %q: %s", path, err), ast.Position{}).WithCause(err)
				return
			}
			mu.Lock()
			results[path] = exports
			mu.Unlock()
		}(path)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Processor) processImport(ctx context.Context, imp *ImportForm, e *env.Environment, currentFile string, prefetched map[string]map[string]env.Value) error {
	kind := ClassifyPath(imp.Path)

	var exports *env.ModuleExports
	if kind == ModuleSource {
		resolved, err := p.resolveSource(ctx, imp.Path, e)
		if err != nil {
			return err
		}
		exports = resolved
	} else {
		raw, err := p.resolveOpaque(ctx, imp.Path, kind, prefetched)
		if err != nil {
			return err
		}
		exports = e.ImportModule(imp.Path, raw)
	}

	switch {
	case imp.Default:
		e.Define(DefaultBindingName(imp.Path), exports)
		return nil
	case imp.Namespace != "":
		e.Define(imp.Namespace, exports)
		return nil
	default:
		for _, sym := range imp.Symbols {
			if err := p.resolveSymbolImport(sym, imp.Path, kind, exports, e, currentFile); err != nil {
				return err
			}
		}
		return nil
	}
}

func (p *Processor) resolveOpaque(ctx context.Context, path string, kind ModuleKind, prefetched map[string]map[string]env.Value) (map[string]env.Value, error) {
	if cached, ok := prefetched[path]; ok {
		return cached, nil
	}
	if p.Loader == nil {
		return nil, hqlerrors.New(hqlerrors.CodeModuleNotFound,
			fmt.Sprintf("no loader configured for %s module %q", kind, path), ast.Position{})
	}
	raw, err := p.Loader.LoadOpaque(ctx, path, kind)
	if err != nil {
		return nil, hqlerrors.New(hqlerrors.CodeRemoteFetchFailed,
			fmt.Sprintf("failed to load %q: %s", path, err), ast.Position{}).WithCause(err)
	}
	return raw, nil
}

// resolveSource implements the three-step cycle-handling algorithm (spec
// §4.6): pre-register a stable exports mapping before recursing so a
// transitive re-entry sees the same (possibly still-empty) object, mark
// the file in progress, compile, then populate the mapping in place and
// mark the file processed.
func (p *Processor) resolveSource(ctx context.Context, path string, e *env.Environment) (*env.ModuleExports, error) {
	if e.HasProcessedFile(path) {
		return e.ModuleExportsFor(path), nil
	}
	if e.IsFileInProgress(path) {
		// Step 2: cyclic re-entry. The caller (resolveSymbolImport) is
		// responsible for rejecting any specific macro symbol requested
		// from a still-in-progress module; the mapping itself is handed
		// back as-is, to be populated once the cycle unwinds.
		return e.ModuleExportsFor(path), nil
	}

	exports := e.ModuleExportsFor(path) // step 1: pre-register, stable identity
	e.MarkFileInProgress(path)

	if p.Compiler == nil {
		return nil, hqlerrors.New(hqlerrors.CodeModuleNotFound,
			fmt.Sprintf("no compiler configured to resolve source module %q", path), ast.Position{FilePath: e.CurrentFilePath()})
	}

	moduleEnv := e.WithFilePath(path)
	populated, err := p.Compiler.CompileModule(ctx, path, moduleEnv)
	if err != nil {
		return nil, err
	}

	for name, value := range populated { // step 3: populate in place
		exports.Names[name] = value
	}
	e.MarkFileProcessed(path)
	return exports, nil
}

// resolveSymbolImport implements the per-symbol resolution order (spec
// §4.6): a user macro exported from path, else a system macro, else a
// plain value looked up in the module's exports, with a deferred nil
// placeholder tolerated only for non-source (opaque) modules.
func (p *Processor) resolveSymbolImport(sym ImportedSymbol, path string, kind ModuleKind, exports *env.ModuleExports, e *env.Environment, currentFile string) error {
	if binding := e.Registry().Lookup(sym.Name); binding != nil {
		if binding.Kind == env.MacroUser && binding.SourceFile == path {
			if e.IsFileInProgress(path) {
				return hqlerrors.New(hqlerrors.CodeCircularMacro,
					fmt.Sprintf("circular import involving macro %q", sym.Name), sym.Pos)
			}
			if err := e.Registry().ImportUserMacro(sym.Name, path, currentFile); err != nil {
				return err
			}
			if sym.Alias != sym.Name {
				e.Registry().MarkImported(currentFile, sym.Alias)
			}
			return nil
		}
		if binding.Kind == env.MacroSystem {
			e.Registry().MarkImported(currentFile, sym.Name)
			return nil
		}
	}

	value, ok := exports.Names[sym.Name]
	if !ok {
		if kind != ModuleSource {
			// Deferred placeholder: an opaque external/JS shim's exports
			// aren't statically known, so a miss here isn't necessarily
			// an error (spec §4.6 step 3).
			e.Define(sym.Alias, nil)
			return nil
		}
		return hqlerrors.New(hqlerrors.CodeExportMissing,
			fmt.Sprintf("module %q has no export %q", path, sym.Name), sym.Pos)
	}
	e.Define(sym.Alias, value)
	return nil
}

func (p *Processor) processExport(exp *ExportForm, e *env.Environment, currentFile string) error {
	me := e.ModuleExportsFor(currentFile)

	if exp.Expr != nil {
		value, err := p.exportedValue(exp.Expr, e)
		if err != nil {
			return err
		}
		me.Names[exp.Name] = value
		if e.Registry().Lookup(exp.Name) != nil {
			e.Registry().MarkExported(currentFile, exp.Name)
		}
		return nil
	}

	for _, name := range exp.Names {
		value, err := e.Lookup(name)
		if err != nil {
			return hqlerrors.New(hqlerrors.CodeExportMissing,
				fmt.Sprintf("cannot export undefined name %q", name), exp.Pos).WithCause(err)
		}
		me.Names[name] = value
		if e.Registry().Lookup(name) != nil {
			e.Registry().MarkExported(currentFile, name)
		}
	}
	return nil
}

// exportedValue resolves the compile-time binding an `(export "name"
// expr)` form attaches to name: a bare symbol resolves through e so
// re-exports and forward references to already-bound names work, any
// other expression is recorded as its own unevaluated SExp node (C8
// still lowers the real `export` statement; this value only needs to be
// observable to other modules' compile-time macro/constant resolution).
func (p *Processor) exportedValue(expr ast.Node, e *env.Environment) (env.Value, error) {
	if sym, ok := expr.(*ast.Symbol); ok {
		if v, err := e.Lookup(sym.Name); err == nil {
			return v, nil
		}
	}
	return expr, nil
}
