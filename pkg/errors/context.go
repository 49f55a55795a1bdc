package errors

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hlvm-dev/hql/pkg/ast"
)

// SourceProvider supplies file contents for context-snippet rendering.
// The core never touches the filesystem directly (spec §9: "I/O is
// delegated to a PathResolver + FileSystem abstraction"); callers inject
// whatever reads real files, a virtual filesystem, or an in-memory fake
// for tests.
type SourceProvider interface {
	ReadFile(path string) ([]byte, error)
}

// sourceCache caches split file lines to avoid re-reading and re-splitting
// on every diagnostic in a run with many errors against the same file.
// Bounded to a fixed entry count with FIFO eviction, mirroring the
// teacher's pkg/errors/enhanced.go (a long-running LSP-style process
// must not let this cache grow unboundedly).
type sourceCache struct {
	mu    sync.Mutex
	limit int
	lines map[string][]string
	order []string
}

func newSourceCache(limit int) *sourceCache {
	return &sourceCache{limit: limit, lines: make(map[string][]string)}
}

func (c *sourceCache) get(provider SourceProvider, path string) ([]string, error) {
	c.mu.Lock()
	if lines, ok := c.lines[path]; ok {
		c.mu.Unlock()
		return lines, nil
	}
	c.mu.Unlock()

	content, err := provider.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(path, lines)
	return lines, nil
}

func (c *sourceCache) add(path string, lines []string) {
	if _, exists := c.lines[path]; !exists {
		if len(c.order) >= c.limit {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.lines, oldest)
		}
		c.order = append(c.order, path)
	}
	c.lines[path] = lines
}

func (c *sourceCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string][]string)
	c.order = nil
}

// defaultContextRadius is the number of lines of context shown above and
// below the offending line (spec §7: "±2 lines gray").
const defaultContextRadius = 2

// sharedSourceCache is reused across AttachContext calls within a process;
// ClearSourceCache resets it (e.g. between independent compiler driver
// runs in a long-lived host process).
var sharedSourceCache = newSourceCache(100)

// ClearSourceCache empties the shared context-line cache.
func ClearSourceCache() { sharedSourceCache.clear() }

// AttachContext populates d's ContextLines/HighlightLine by reading the
// source file at d.Location via provider. It is a no-op if d has no valid
// location. Context-extraction failure is non-fatal: it appends a note to
// the diagnostic's suggestions rather than failing the whole diagnostic.
func AttachContext(d *Diagnostic, provider SourceProvider) *Diagnostic {
	if !d.Location.Valid() || d.Location.Line <= 0 {
		return d
	}

	allLines, err := sharedSourceCache.get(provider, d.Location.FilePath)
	if err != nil {
		return d.WithSuggestion(fmt.Sprintf("(source unavailable: %v)", err))
	}

	targetIdx := d.Location.Line - 1
	if targetIdx < 0 || targetIdx >= len(allLines) {
		return d
	}

	start := targetIdx - defaultContextRadius
	if start < 0 {
		start = 0
	}
	end := targetIdx + defaultContextRadius + 1
	if end > len(allLines) {
		end = len(allLines)
	}

	return d.WithContext(allLines[start:end], targetIdx-start)
}

// Reporter ensures a diagnostic is printed at most once (spec §7: "A
// diagnostic is reported at most once: the reporter marks the error
// object before printing").
type Reporter struct {
	mu sync.Mutex
}

// NewReporter creates a Reporter whose Report method is safe for
// concurrent use.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report returns the diagnostic's formatted text and true the first time
// it is called for d; on subsequent calls for the same *Diagnostic it
// returns ("", false).
func (r *Reporter) Report(d *Diagnostic) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.reported {
		return "", false
	}
	d.reported = true
	return d.Format(), true
}

// contextFromPosition is a small helper used by stages that only have a
// raw ast.Position and a provider, without constructing a Diagnostic
// first; kept for symmetry with AttachContext.
func contextFromPosition(provider SourceProvider, pos ast.Position) ([]string, int, error) {
	if !pos.Valid() {
		return nil, 0, fmt.Errorf("position has no file path")
	}
	lines, err := sharedSourceCache.get(provider, pos.FilePath)
	if err != nil {
		return nil, 0, err
	}
	idx := pos.Line - 1
	if idx < 0 || idx >= len(lines) {
		return nil, 0, fmt.Errorf("line %d out of range", pos.Line)
	}
	start := idx - defaultContextRadius
	if start < 0 {
		start = 0
	}
	end := idx + defaultContextRadius + 1
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end], idx - start, nil
}
