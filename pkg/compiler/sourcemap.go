package compiler

import (
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/go-sourcemap/sourcemap"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// sourceMapCacheCapacity bounds how many parsed source maps stay resident;
// loadSourceMap is typically called repeatedly against the same handful
// of maps while a tool walks a stack trace.
const sourceMapCacheCapacity = 50

// MappedPosition is the original-source position mapPosition resolves a
// generated position to (spec §6: "mapPosition(map, { line, column }) ->
// { source, line, column } | null").
type MappedPosition struct {
	Source string
	Line   int
	Column int
}

type sourceMapCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *sourcemap.Consumer]
}

func newSourceMapCache() *sourceMapCache {
	c, _ := lru.New[string, *sourcemap.Consumer](sourceMapCacheCapacity)
	return &sourceMapCache{cache: c}
}

func (c *sourceMapCache) get(path string) (*sourcemap.Consumer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(path)
}

func (c *sourceMapCache) put(path string, consumer *sourcemap.Consumer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(path, consumer)
}

func (c *sourceMapCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// sharedSourceMapCache is process-wide: parsed source maps carry no
// per-Driver state (sourcemap.Consumer only holds the parsed document),
// so every Driver in one process benefits from the same cache.
var sharedSourceMapCache = newSourceMapCache()

// LoadSourceMap parses the V3 JSON document at path, using
// go-sourcemap/sourcemap as the consumer (this module's encoder, in
// pkg/codegen, is hand-written because that library only reads maps, it
// never produces them). Repeated calls against the same path are served
// from sharedSourceMapCache until InvalidateSourceMapCache is called.
func (d *Driver) LoadSourceMap(path string) (*sourcemap.Consumer, error) {
	if consumer, ok := sharedSourceMapCache.get(path); ok {
		return consumer, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hqlerrors.New(hqlerrors.CodeIOFailure, err.Error(), ast.Position{FilePath: path})
	}
	consumer, err := sourcemap.Parse(path, data)
	if err != nil {
		return nil, hqlerrors.New(hqlerrors.CodeIOFailure,
			"invalid source map: "+err.Error(), ast.Position{FilePath: path})
	}

	sharedSourceMapCache.put(path, consumer)
	return consumer, nil
}

// MapPosition resolves a generated (line, column) position through the
// map at path back to its original source location, or nil if the map
// has no mapping covering that position (spec §6).
func (d *Driver) MapPosition(path string, line, column int) (*MappedPosition, error) {
	consumer, err := d.LoadSourceMap(path)
	if err != nil {
		return nil, err
	}
	source, _, origLine, origCol, ok := consumer.Source(line, column)
	if !ok {
		return nil, nil
	}
	return &MappedPosition{Source: source, Line: origLine, Column: origCol}, nil
}

// InvalidateSourceMapCache drops every parsed source map this process
// has cached (spec §6: "invalidateSourceMapCache()"), forcing the next
// LoadSourceMap call for a given path to re-read and re-parse it — used
// after a recompile replaces a map on disk.
func InvalidateSourceMapCache() {
	sharedSourceMapCache.purge()
}
