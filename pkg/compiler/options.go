// Package compiler implements the compiler driver (C11, spec §4.10):
// the orchestrator that strings every other component (C2-C10) into the
// two programmatic entry points, compile and expand, plus the
// source-map query surface spec §6 names.
package compiler

import (
	"github.com/hlvm-dev/hql/pkg/env"
	"github.com/hlvm-dev/hql/pkg/ir"
	"github.com/hlvm-dev/hql/pkg/macro"
)

// Options controls one Compile or Expand call (spec §4.10).
type Options struct {
	Verbose           bool
	ShowTiming        bool
	BaseDir           string
	TempDir           string
	CurrentFile       string
	GenerateSourceMap bool
	SourceContent     string
	Context           Context
}

// Context lets a caller reuse a prewarmed Environment across calls
// (spec §4.10: "context: { environment?, macroRegistry?, options? }"),
// e.g. a REPL-like host that wants later compiles to see earlier
// top-level definitions. MacroRegistry is reached through Environment
// itself (it is a shared pointer, not a separate handle), so this
// struct only needs the two independently useful knobs.
type Context struct {
	Environment  *env.Environment
	MacroOptions *macro.Options
}

// Result is what one Compile call produces (spec §6: "{ code, sourceMap?, ir? }").
type Result struct {
	Code        string
	SourceMap   string
	IR          *ir.Program
	UsedHelpers []string // runtime helpers the prelude injected into Code
}
