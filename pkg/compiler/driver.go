package compiler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/codegen"
	"github.com/hlvm-dev/hql/pkg/env"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/estree"
	"github.com/hlvm-dev/hql/pkg/importer"
	"github.com/hlvm-dev/hql/pkg/ir"
	"github.com/hlvm-dev/hql/pkg/irbuilder"
	"github.com/hlvm-dev/hql/pkg/macro"
	"github.com/hlvm-dev/hql/pkg/reader"
	"github.com/hlvm-dev/hql/pkg/syntax"
	"github.com/hlvm-dev/hql/pkg/validator"
)

const stdlibLoadedSentinel = "__hql_stdlib_loaded__"

// StdlibLoader registers the embedded stdlib's macros into e once per
// compilation (C16; spec §4.10: "setup env — load embedded stdlib
// macros once per env"). Implemented by pkg/stdlib.
type StdlibLoader interface {
	LoadMacros(e *env.Environment) error
}

// Driver wires C2 (Reader) through C10 (ESTree emitter & generator)
// into the two entry points spec §4.10/§6 name: Compile and Expand. It
// also implements pkg/importer's SourceCompiler so a source import
// recurses back through this same pipeline.
type Driver struct {
	BaseDir string
	TempDir string

	Loader importer.OpaqueLoader
	Stdlib StdlibLoader
}

// New builds a Driver. loader may be nil if the program never imports
// a non-source module; stdlib may be nil if the embedded stdlib isn't
// wired in (e.g. in tests that never reference @hql/...).
func New(baseDir, tempDir string, loader importer.OpaqueLoader, stdlib StdlibLoader) *Driver {
	return &Driver{BaseDir: baseDir, TempDir: tempDir, Loader: loader, Stdlib: stdlib}
}

func (d *Driver) processor() *importer.Processor {
	return importer.New(d, d.Loader)
}

// setupEnv loads the embedded stdlib's macros into e's registry exactly
// once, regardless of how many Compile/Expand/CompileModule calls share
// e (spec §4.10).
func (d *Driver) setupEnv(e *env.Environment) error {
	if d.Stdlib == nil {
		return nil
	}
	if _, err := e.Lookup(stdlibLoadedSentinel); err == nil {
		return nil
	}
	if err := d.Stdlib.LoadMacros(e); err != nil {
		return err
	}
	e.Define(stdlibLoadedSentinel, true)
	return nil
}

func (d *Driver) macroOptions(opts Options, currentFile string) macro.Options {
	if opts.Context.MacroOptions != nil {
		return *opts.Context.MacroOptions
	}
	mo := macro.DefaultOptions(currentFile)
	// A caller-supplied Environment may carry runtime-injected macros (a
	// REPL-style host); the macro-expansion cache a future optimization
	// pass might add must stay off in that case to avoid serving a stale
	// expansion across different runtime macro sets.
	mo.UseCache = opts.Context.Environment == nil
	return mo
}

// Compile runs the full pipeline over sourceText and returns generated
// code, an optional V3 source map, and the IR it was generated from
// (spec §4.10/§6: "compile(sourceText, options) -> { code, sourceMap?,
// ir? }").
func (d *Driver) Compile(ctx context.Context, sourceText string, opts Options) (Result, error) {
	e, forms, err := d.readAndPrepare(ctx, sourceText, opts)
	if err != nil {
		return Result{}, err
	}

	expanded, err := macro.Expand(forms, e, d.macroOptions(opts, opts.CurrentFile))
	if err != nil {
		return Result{}, err
	}

	prog, err := irbuilder.Build(expanded)
	if err != nil {
		return Result{}, err
	}

	if diags := validator.Validate(prog); len(diags) > 0 {
		return Result{}, diags[0]
	}

	return d.emit(prog, opts)
}

// Expand runs the pipeline only through macro expansion and returns the
// expanded form sequence, for tooling that wants to inspect macro
// output without generating code (spec §4.10/§6: "expand(sourceText,
// options) -> [SExp]").
func (d *Driver) Expand(ctx context.Context, sourceText string, opts Options) ([]ast.Node, error) {
	e, forms, err := d.readAndPrepare(ctx, sourceText, opts)
	if err != nil {
		return nil, err
	}
	return macro.Expand(forms, e, d.macroOptions(opts, opts.CurrentFile))
}

// readAndPrepare runs C2 (Reader), C3 (Syntax transformer), and C7
// (Import processor) — the shared prefix of Compile and Expand, per the
// pipeline order spec §4.10 gives: "setup env -> C2 -> C3 -> C7 -> C6".
func (d *Driver) readAndPrepare(ctx context.Context, sourceText string, opts Options) (*env.Environment, []ast.Node, error) {
	e := opts.Context.Environment
	if e == nil {
		e = env.New()
	}
	if err := d.setupEnv(e); err != nil {
		return nil, nil, err
	}
	e = e.WithFilePath(opts.CurrentFile)

	raw, err := reader.Read([]byte(sourceText), opts.CurrentFile)
	if err != nil {
		return nil, nil, err
	}

	forms, err := transformAll(raw)
	if err != nil {
		return nil, nil, err
	}

	if err := d.processor().Process(ctx, forms, e); err != nil {
		return nil, nil, err
	}

	return e, forms, nil
}

func transformAll(forms []ast.Node) ([]ast.Node, error) {
	out := make([]ast.Node, len(forms))
	for i, f := range forms {
		t, err := syntax.Transform(f)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// emit runs C9 (Semantic validator, already done by the caller for
// Compile) through C10 (ESTree emitter & generator) and assembles a
// Result.
func (d *Driver) emit(prog *ir.Program, opts Options) (Result, error) {
	estreeProg, helpers := estree.Convert(prog)
	res, err := codegen.Generate(estreeProg, helpers, codegen.Options{
		File:              opts.CurrentFile,
		GenerateSourceMap: opts.GenerateSourceMap,
		SourceContent:     opts.SourceContent,
		Preamble:          preludeFor(helpers),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Code: res.Code, SourceMap: res.SourceMap, IR: prog, UsedHelpers: res.UsedHelpers}, nil
}

// CompileModule implements pkg/importer.SourceCompiler: it recursively
// compiles a local ".hql" dependency and returns the name->value
// bindings its export forms populate into e's own exports mapping
// (spec §4.6's cycle-handling algorithm owns pre-registration and
// in-place population; this method only needs to run the dependency's
// own pipeline far enough for its `export` forms to fire, and to
// produce its compiled output alongside the entry file's).
//
// Relative import paths are resolved against BaseDir directly, rather
// than against the importing file's own directory: pkg/importer treats
// every import path as an opaque map key and never threads the
// importing file's directory through resolveSource, so a single global
// root is the simplest resolution policy consistent with what's
// already wired.
func (d *Driver) CompileModule(ctx context.Context, path string, e *env.Environment) (map[string]env.Value, error) {
	src, err := os.ReadFile(filepath.Join(d.BaseDir, path))
	if err != nil {
		return nil, hqlerrors.New(hqlerrors.CodeModuleNotFound,
			err.Error(), ast.Position{FilePath: path})
	}

	if err := d.setupEnv(e); err != nil {
		return nil, err
	}

	raw, err := reader.Read(src, path)
	if err != nil {
		return nil, err
	}
	forms, err := transformAll(raw)
	if err != nil {
		return nil, err
	}
	if err := d.processor().Process(ctx, forms, e); err != nil {
		return nil, err
	}

	expanded, err := macro.Expand(forms, e, d.macroOptions(Options{}, path))
	if err != nil {
		return nil, err
	}

	prog, err := irbuilder.Build(expanded)
	if err != nil {
		return nil, err
	}
	if diags := validator.Validate(prog); len(diags) > 0 {
		return nil, diags[0]
	}

	result, err := d.emit(prog, Options{CurrentFile: path, TempDir: d.TempDir})
	if err != nil {
		return nil, err
	}
	if d.TempDir != "" {
		if err := d.writeOutput(path, result); err != nil {
			return nil, err
		}
	}

	return e.ModuleExportsFor(path).Names, nil
}

// writeOutput persists a compiled dependency's generated JS (and, when
// present, its source map) under TempDir, mirroring spec §4.10's
// `tempDir: cache location for transpiled JS/TS`.
func (d *Driver) writeOutput(path string, result Result) error {
	outPath := filepath.Join(d.TempDir, path)
	outPath = outPath[:len(outPath)-len(filepath.Ext(outPath))] + ".js"
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(result.Code), 0o644); err != nil {
		return err
	}
	if result.SourceMap != "" {
		if err := os.WriteFile(outPath+".map", []byte(result.SourceMap), 0o644); err != nil {
			return err
		}
	}
	return nil
}
