package env

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// lookupCacheCapacity bounds the shared LRU lookup cache (spec §4.3: "A
// bounded LRU (capacity ~500) caches lookups; it is invalidated on every
// define").
const lookupCacheCapacity = 500

// ModuleExports is the single stable mapping instance shared by every
// importer of one module. It is never replaced, only mutated in place,
// so consumers that captured a reference before the module finished
// compiling still observe the final bindings (spec §3: "stable mutable
// mapping... required for circular imports"; see DESIGN.md Open
// Question 1).
type ModuleExports struct {
	Names map[string]Value
}

func newModuleExports() *ModuleExports {
	return &ModuleExports{Names: make(map[string]Value)}
}

// shared holds the state that is global to one compilation and visible
// from every node in its Environment chain: the macro registry, module
// exports table, file-processing sets, and the lookup cache. Extend()
// passes the same *shared pointer to every descendant instead of copying
// it, matching "extend() | New child scope sharing the macro registry."
type shared struct {
	registry        *MacroRegistry
	moduleExports   map[string]*ModuleExports
	processedFiles  map[string]bool
	inProgressFiles map[string]bool
	cache           *lru.Cache[string, Value]
	gensymCounter   int
}

// Environment is one node in a parent-linked lexical scope chain (spec
// §3/§4.3).
type Environment struct {
	parent   *Environment
	vars     map[string]Value
	shared   *shared
	fileCtx  string // currentFilePath
	macroCtx string // currentMacroContext
}

// New creates a fresh root Environment for one compilation.
func New() *Environment {
	cache, _ := lru.New[string, Value](lookupCacheCapacity)
	return &Environment{
		vars: make(map[string]Value),
		shared: &shared{
			registry:        NewMacroRegistry(),
			moduleExports:   make(map[string]*ModuleExports),
			processedFiles:  make(map[string]bool),
			inProgressFiles: make(map[string]bool),
			cache:           cache,
		},
	}
}

// Extend returns a new child scope that shares this Environment's macro
// registry, module exports table, and lookup cache, but starts with an
// empty variable map of its own (spec §4.3: "extend()").
func (e *Environment) Extend() *Environment {
	return &Environment{
		parent:   e,
		vars:     make(map[string]Value),
		shared:   e.shared,
		fileCtx:  e.fileCtx,
		macroCtx: e.macroCtx,
	}
}

// Registry returns the macro registry shared across this Environment's
// whole scope chain.
func (e *Environment) Registry() *MacroRegistry { return e.shared.registry }

// CurrentFilePath returns the file path associated with this scope.
func (e *Environment) CurrentFilePath() string { return e.fileCtx }

// WithFilePath returns a child scope with currentFilePath set to path,
// used when the import processor or macro expander switches file context
// mid-compilation.
func (e *Environment) WithFilePath(path string) *Environment {
	child := e.Extend()
	child.fileCtx = path
	return child
}

// WithMacroContext returns a child scope recording the name of the macro
// currently being expanded, surfaced in diagnostics raised during
// expansion.
func (e *Environment) WithMacroContext(macroName string) *Environment {
	child := e.Extend()
	child.macroCtx = macroName
	return child
}

// Define binds key to value in the current scope. Re-binding an existing
// key in the same scope replaces the value. Every call invalidates the
// shared lookup cache (spec §4.3: "cache-invalidated").
func (e *Environment) Define(key string, value Value) {
	e.vars[key] = value
	e.shared.cache.Purge()
}

// Lookup resolves key by walking from the current scope to the root,
// then supports dotted path lookup ("a.b.c") through module exports and
// nested map values once a root binding is found (spec §4.3: "Current →
// parent chain; supports a.b.c path lookup through module exports and
// nested objects"). Results are cached in the shared LRU cache keyed by
// the scope that resolved them together with the lookup key, so a cached
// value is only served back to that same scope; the cache is also purged
// on every Define anywhere in the chain.
func (e *Environment) Lookup(key string) (Value, error) {
	cacheKey := fmt.Sprintf("%p\x00%s", e, key)
	if cached, ok := e.shared.cache.Get(cacheKey); ok {
		return cached, nil
	}

	head, rest, hasPath := strings.Cut(key, ".")
	v, err := e.lookupLocal(head)
	if err != nil {
		return nil, err
	}

	if hasPath {
		v, err = resolvePath(v, rest, key)
		if err != nil {
			return nil, err
		}
	}

	e.shared.cache.Add(cacheKey, v)
	return v, nil
}

func (e *Environment) lookupLocal(name string) (Value, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v, nil
		}
	}
	if exports, ok := e.shared.moduleExports[name]; ok {
		return exports, nil
	}
	return nil, hqlerrors.New(hqlerrors.CodeUndefinedVariable,
		fmt.Sprintf("undefined variable %q", name),
		ast.Position{FilePath: e.fileCtx})
}

// resolvePath walks dotted path segments (e.g. "b.c" from key "a.b.c")
// through module-exports mappings and nested Go maps.
func resolvePath(v Value, path string, fullKey string) (Value, error) {
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch container := current.(type) {
		case *ModuleExports:
			next, ok := container.Names[segment]
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeUndefinedVariable,
					fmt.Sprintf("undefined variable %q", fullKey), ast.Position{})
			}
			current = next
		case map[string]Value:
			next, ok := container[segment]
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeUndefinedVariable,
					fmt.Sprintf("undefined variable %q", fullKey), ast.Position{})
			}
			current = next
		default:
			return nil, hqlerrors.New(hqlerrors.CodeUndefinedVariable,
				fmt.Sprintf("undefined variable %q: %q is not an object", fullKey, segment), ast.Position{})
		}
	}
	return current, nil
}

// ImportModule ensures a single stable ModuleExports mapping exists for
// name, merges the provided exports into it (live binding: existing
// bindings are overwritten, the map itself is never replaced), and
// registers name as a module binding visible via Lookup (spec §4.3:
// "importModule(name, exports) | Ensures one stable exports mapping...").
func (e *Environment) ImportModule(name string, exports map[string]Value) *ModuleExports {
	me, ok := e.shared.moduleExports[name]
	if !ok {
		me = newModuleExports()
		e.shared.moduleExports[name] = me
	}
	for k, v := range exports {
		me.Names[k] = v
	}
	e.shared.cache.Purge()
	return me
}

// ModuleExportsFor returns the stable exports mapping for name,
// pre-registering an empty one if none exists yet (used by the import
// processor to pre-register a placeholder before compiling a module that
// participates in a cycle).
func (e *Environment) ModuleExportsFor(name string) *ModuleExports {
	me, ok := e.shared.moduleExports[name]
	if !ok {
		me = newModuleExports()
		e.shared.moduleExports[name] = me
	}
	return me
}

// AllVisibleNames returns every variable name bound anywhere in e's
// scope chain, ordered innermost-first so a caller building a flattened
// view (pkg/interp's macro-time bridge) can let the first occurrence of
// a name win and get correct shadowing.
func (e *Environment) AllVisibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := e; scope != nil; scope = scope.parent {
		for name := range scope.vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// HasProcessedFile reports whether path has already been fully compiled.
func (e *Environment) HasProcessedFile(path string) bool {
	return e.shared.processedFiles[path]
}

// MarkFileProcessed records that path has finished compiling and is no
// longer in progress.
func (e *Environment) MarkFileProcessed(path string) {
	delete(e.shared.inProgressFiles, path)
	e.shared.processedFiles[path] = true
}

// MarkFileInProgress records that path has begun compiling, for cycle
// detection by the import processor.
func (e *Environment) MarkFileInProgress(path string) {
	e.shared.inProgressFiles[path] = true
}

// IsFileInProgress reports whether path is currently being compiled.
func (e *Environment) IsFileInProgress(path string) bool {
	return e.shared.inProgressFiles[path]
}

// NextGensym returns a monotonically increasing counter scoped to this
// compilation: every Environment produced by Extend() from the same root
// shares it. Auto-gensym numbering during macro-time quasiquote
// expansion (pkg/interp) is thus a deterministic function of expansion
// order within one Compile call, never of how many compiles ran earlier
// in this process (spec §8: "compiling the same source twice ...
// produces byte-identical code"; spec §9: "no process-wide mutable
// state").
func (e *Environment) NextGensym() int {
	e.shared.gensymCounter++
	return e.shared.gensymCounter
}
