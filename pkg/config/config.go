// Package config provides configuration management for the HQL compiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SourceMapFormat represents the source map output format.
type SourceMapFormat string

const (
	// FormatInline embeds the source map as a base64 comment in generated code.
	FormatInline SourceMapFormat = "inline"

	// FormatSeparate writes the source map to a sibling .js.map file.
	FormatSeparate SourceMapFormat = "separate"

	// FormatBoth writes both inline and separate source maps.
	FormatBoth SourceMapFormat = "both"

	// FormatNone disables source map generation regardless of GenerateSourceMap.
	FormatNone SourceMapFormat = "none"
)

// IsValid reports whether f is one of the recognized formats.
func (f SourceMapFormat) IsValid() bool {
	switch f {
	case FormatInline, FormatSeparate, FormatBoth, FormatNone:
		return true
	default:
		return false
	}
}

// Config represents the complete compiler configuration (spec §4.10's
// Options, plus the macro-expander bounds spec §4.5 names and the
// import resolution roots spec §4.6 names).
type Config struct {
	Compiler  CompilerConfig  `toml:"compiler"`
	SourceMap SourceMapConfig `toml:"sourcemaps"`
	Import    ImportConfig    `toml:"import"`
}

// CompilerConfig holds the macro expander bounds and the Environment's
// lookup cache size. hqlc loads and validates these values but does not
// pass them on: the expander runs with macro.DefaultOptions and the
// Environment's cache capacity is fixed at 500.
type CompilerConfig struct {
	// IterationLimit bounds how many fixpoint passes macro expansion
	// runs before failing (spec §4.5, default 100).
	IterationLimit int `toml:"iteration_limit"`

	// MaxExpandDepth bounds macro expansion recursion depth (spec §4.5,
	// default 100).
	MaxExpandDepth int `toml:"max_expand_depth"`

	// LookupCacheSize is the Environment's LRU lookup cache capacity
	// (spec §4.3).
	LookupCacheSize int `toml:"lookup_cache_size"`
}

// SourceMapConfig controls source map generation.
type SourceMapConfig struct {
	// Enabled is read from config files; hqlc compile does not consult
	// it and generates a map only when --source-map is given.
	Enabled bool `toml:"enabled"`

	// Format selects the map output format. hqlc compile only tells
	// FormatNone (no map) apart from the others, which all write the map
	// to a sibling .js.map file; no inline map comment is emitted.
	Format SourceMapFormat `toml:"format"`
}

// ImportConfig controls module resolution roots and remote fetch
// concurrency (spec §4.6).
type ImportConfig struct {
	// BaseDir is the root relative imports resolve against.
	BaseDir string `toml:"base_dir"`

	// TempDir is where compiled dependency output is cached (spec
	// §4.10's "tempDir: cache location for transpiled JS/TS").
	TempDir string `toml:"temp_dir"`

	// RemoteFanout is the configured bound on concurrent remote module
	// fetches within one file. It is validated but not passed to the
	// importer, which fetches all of a file's remote imports at once.
	RemoteFanout int `toml:"remote_fanout"`
}

// DefaultConfig returns the built-in configuration used when no user or
// project config file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Compiler: CompilerConfig{
			IterationLimit:  100,
			MaxExpandDepth:  100,
			LookupCacheSize: 500,
		},
		SourceMap: SourceMapConfig{
			Enabled: false,
			Format:  FormatSeparate,
		},
		Import: ImportConfig{
			BaseDir:      ".",
			TempDir:      ".hql-cache/tmp",
			RemoteFanout: 4,
		},
	}
}

// Load loads configuration from multiple sources with precedence:
//  1. CLI flags (highest priority) - passed as overrides
//  2. Project hql.toml (current directory)
//  3. User config (~/.hql/config.toml)
//  4. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".hql", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "hql.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads a TOML configuration file into cfg. A missing
// file is not an error; defaults (or an earlier layer) stand.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyOverrides copies every non-zero field from overrides onto cfg.
// Only the fields a CLI is likely to expose as flags are considered.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Compiler.IterationLimit != 0 {
		cfg.Compiler.IterationLimit = overrides.Compiler.IterationLimit
	}
	if overrides.Compiler.MaxExpandDepth != 0 {
		cfg.Compiler.MaxExpandDepth = overrides.Compiler.MaxExpandDepth
	}
	if overrides.Compiler.LookupCacheSize != 0 {
		cfg.Compiler.LookupCacheSize = overrides.Compiler.LookupCacheSize
	}
	if overrides.SourceMap.Format != "" {
		cfg.SourceMap.Format = overrides.SourceMap.Format
	}
	if overrides.Import.BaseDir != "" {
		cfg.Import.BaseDir = overrides.Import.BaseDir
	}
	if overrides.Import.TempDir != "" {
		cfg.Import.TempDir = overrides.Import.TempDir
	}
	if overrides.Import.RemoteFanout != 0 {
		cfg.Import.RemoteFanout = overrides.Import.RemoteFanout
	}
}

// Validate checks whether cfg holds internally consistent values.
func (c *Config) Validate() error {
	if c.Compiler.IterationLimit <= 0 {
		return fmt.Errorf("invalid iteration_limit: %d (must be positive)", c.Compiler.IterationLimit)
	}
	if c.Compiler.MaxExpandDepth <= 0 {
		return fmt.Errorf("invalid max_expand_depth: %d (must be positive)", c.Compiler.MaxExpandDepth)
	}
	if c.Compiler.LookupCacheSize <= 0 {
		return fmt.Errorf("invalid lookup_cache_size: %d (must be positive)", c.Compiler.LookupCacheSize)
	}
	if !c.SourceMap.Format.IsValid() {
		return fmt.Errorf("invalid sourcemap format: %q (must be 'inline', 'separate', 'both', or 'none')",
			c.SourceMap.Format)
	}
	if c.Import.RemoteFanout <= 0 {
		return fmt.Errorf("invalid remote_fanout: %d (must be positive)", c.Import.RemoteFanout)
	}
	return nil
}
