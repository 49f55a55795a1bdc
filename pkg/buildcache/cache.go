// Package buildcache implements the compiler driver's optional
// incremental build cache (C15): a content-hash keyed cache that lets a
// CLI build skip recompiling a file whose source, output, and
// dependencies are all unchanged since the last successful build.
// compile itself (pkg/compiler) is pure and always correct without
// this — the cache only ever skips redundant work, never changes what
// a rebuild produces.
package buildcache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry records one file's state as of its last successful build.
type Entry struct {
	SourcePath   string    `json:"sourcePath"`
	OutputPath   string    `json:"outputPath"`
	SourceHash   string    `json:"sourceHash"`
	OutputHash   string    `json:"outputHash"`
	BuiltAt      time.Time `json:"builtAt"`
	Dependencies []string  `json:"dependencies"`
}

// Cache is a content-hash keyed incremental build cache persisted as
// JSON under ".hql-cache" in the project root.
type Cache struct {
	Root      string
	CacheDir  string
	Entries   map[string]*Entry
	cacheFile string
}

// Open creates or loads the build cache rooted at root.
func Open(root string) (*Cache, error) {
	cacheDir := filepath.Join(root, ".hql-cache")
	cacheFile := filepath.Join(cacheDir, "build-cache.json")

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		Root:      root,
		CacheDir:  cacheDir,
		Entries:   make(map[string]*Entry),
		cacheFile: cacheFile,
	}
	if err := c.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

// NeedsRebuild reports whether sourcePath must be recompiled to
// outputPath: true if there is no cache entry, the output is missing,
// the source's content hash changed, or any recorded dependency's mtime
// is newer than the last build (spec §4.14: "consults mtime then hash
// then transitive dependency mtimes/hashes").
func (c *Cache) NeedsRebuild(sourcePath, outputPath string) (bool, error) {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return true, err
	}

	entry, ok := c.Entries[absSource]
	if !ok {
		return true, nil
	}

	sourceInfo, err := os.Stat(absSource)
	if err != nil {
		return true, err
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return true, nil
	}
	if sourceInfo.ModTime().After(entry.BuiltAt) {
		return true, nil
	}

	currentHash, err := hashFile(absSource)
	if err != nil {
		return true, err
	}
	if currentHash != entry.SourceHash {
		return true, nil
	}

	for _, dep := range entry.Dependencies {
		depInfo, err := os.Stat(dep)
		if err != nil {
			return true, nil
		}
		if depInfo.ModTime().After(entry.BuiltAt) {
			return true, nil
		}
	}

	return false, nil
}

// MarkBuilt records a fresh entry for sourcePath after a successful
// compile. dependencies is the resolved module graph the import
// processor (C7) already computed for this file (spec §4.14) — this
// package never re-derives it by scanning source text.
func (c *Cache) MarkBuilt(sourcePath, outputPath string, dependencies []string) error {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return err
	}

	sourceHash, err := hashFile(absSource)
	if err != nil {
		return fmt.Errorf("failed to hash source: %w", err)
	}
	outputHash, err := hashFile(outputPath)
	if err != nil {
		return fmt.Errorf("failed to hash output: %w", err)
	}

	c.Entries[absSource] = &Entry{
		SourcePath:   absSource,
		OutputPath:   outputPath,
		SourceHash:   sourceHash,
		OutputHash:   outputHash,
		BuiltAt:      time.Now(),
		Dependencies: dependencies,
	}
	return c.save()
}

// Invalidate removes sourcePath's cache entry, forcing its next build.
func (c *Cache) Invalidate(sourcePath string) error {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return err
	}
	delete(c.Entries, absSource)
	return c.save()
}

// InvalidateAll clears every cache entry.
func (c *Cache) InvalidateAll() error {
	c.Entries = make(map[string]*Entry)
	return c.save()
}

// Clean drops entries whose source or output file no longer exists on
// disk.
func (c *Cache) Clean() error {
	var stale []string
	for path, entry := range c.Entries {
		if _, err := os.Stat(entry.SourcePath); os.IsNotExist(err) {
			stale = append(stale, path)
			continue
		}
		if _, err := os.Stat(entry.OutputPath); os.IsNotExist(err) {
			stale = append(stale, path)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	for _, path := range stale {
		delete(c.Entries, path)
	}
	return c.save()
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &c.Entries)
}

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.Entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	return os.WriteFile(c.cacheFile, data, 0o644)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}
