package importer

import (
	"path/filepath"
	"strings"
)

// ModuleKind classifies an import path's resolution strategy (spec §4.6).
type ModuleKind int

const (
	// ModuleSource is a ".hql" path, recursively compiled through the
	// full pipeline.
	ModuleSource ModuleKind = iota
	// ModuleTarget is a plain ".js" path, loaded as an opaque mapping.
	ModuleTarget
	// ModuleTypedTarget is a ".ts" path, transpiled then treated as .js.
	ModuleTypedTarget
	// ModuleEmbedded is an "@hql/..." embedded stdlib path.
	ModuleEmbedded
	// ModuleRemote is an http(s):// or npm:/jsr: specifier, fetched over
	// the network.
	ModuleRemote
)

func (k ModuleKind) String() string {
	switch k {
	case ModuleSource:
		return "source"
	case ModuleTarget:
		return "target"
	case ModuleTypedTarget:
		return "typed-target"
	case ModuleEmbedded:
		return "embedded"
	case ModuleRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ClassifyPath determines how path should be resolved (spec §4.6: "Module
// path kinds: remote (http://, https://, npm:, jsr:), embedded stdlib
// (@hql/…), source (.hql), target ECMAScript (.js), typed target (.ts
// transpiled then treated as .js)"). Paths with no recognized scheme or
// extension default to source, matching the reader/importer's
// extensionless relative-import convention.
func ClassifyPath(path string) ModuleKind {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"),
		strings.HasPrefix(path, "npm:"), strings.HasPrefix(path, "jsr:"):
		return ModuleRemote
	case strings.HasPrefix(path, "@hql/"):
		return ModuleEmbedded
	case strings.HasSuffix(path, ".ts"):
		return ModuleTypedTarget
	case strings.HasSuffix(path, ".js"):
		return ModuleTarget
	default:
		return ModuleSource
	}
}

// DefaultBindingName derives the identifier a bare `(import "path")` binds
// its namespace object under, from the last path segment with any scheme
// prefix and file extension stripped.
func DefaultBindingName(path string) string {
	trimmed := path
	for _, scheme := range []string{"http://", "https://", "npm:", "jsr:"} {
		trimmed = strings.TrimPrefix(trimmed, scheme)
	}
	base := trimmed
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base
}
