// Package codegen implements the second half of C10 (spec §4.9 step 2):
// printing an estree.Program to ECMAScript text while recording a V3
// source map alongside it. The printer is a plain recursive descent over
// pkg/estree's node types; the source-map side is grounded on the VLQ
// encoding documented in sourcemap.go.
package codegen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hlvm-dev/hql/pkg/estree"
)

// Options configures one Generate call.
type Options struct {
	File              string // the "file" field of the emitted source map
	GenerateSourceMap bool
	SourceContent     string // embedded verbatim when non-empty and GenerateSourceMap is set
	Preamble          string // written verbatim before the program body, unmapped by the source map
}

// Result is everything one Generate call produces.
type Result struct {
	Code         string
	SourceMap    string // empty when Options.GenerateSourceMap is false
	UsedHelpers  []string
}

// Generate prints prog to ECMAScript source text, optionally alongside a
// V3 source map. usedHelpers is threaded through from estree.Convert so
// callers don't need to re-scan the tree.
func Generate(prog *estree.Program, usedHelpers []string, opts Options) (Result, error) {
	g := newGenerator(opts)
	if opts.Preamble != "" {
		// Written with the plain write path, not mark()'d: it carries no
		// source position, so it only advances genLine/genCol and every
		// mapping for the program body that follows lands at its correct
		// shifted generated position.
		g.write(opts.Preamble)
	}
	g.printProgram(prog)

	res := Result{Code: g.buf.String(), UsedHelpers: usedHelpers}
	if opts.GenerateSourceMap {
		res.SourceMap = g.sourceMapJSON(opts)
	}
	return res, nil
}

type generator struct {
	buf strings.Builder

	genLine int // 0-based
	genCol  int // 0-based, UTF-16 code units (ASCII-only output here, so == byte count)

	indent int

	sources     []string
	sourceIndex map[string]int
	names       []string
	nameIndex   map[string]int
	mappings    []mapping
}

func newGenerator(opts Options) *generator {
	return &generator{
		sourceIndex: make(map[string]int),
		nameIndex:   make(map[string]int),
	}
}

// --- low-level text emission ---

func (g *generator) write(s string) {
	for _, r := range s {
		if r == '\n' {
			g.genLine++
			g.genCol = 0
		} else {
			g.genCol++
		}
	}
	g.buf.WriteString(s)
}

func (g *generator) writeIndent() {
	g.write(strings.Repeat("  ", g.indent))
}

func (g *generator) newline() {
	g.write("\n")
}

// mark records a source-map segment at the current generated position
// for loc, optionally associated with an original name (e.g. an
// identifier's own spelling).
func (g *generator) mark(loc estree.Loc, name string) {
	if loc.Source == "" {
		return
	}
	srcIdx, ok := g.sourceIndex[loc.Source]
	if !ok {
		srcIdx = len(g.sources)
		g.sources = append(g.sources, loc.Source)
		g.sourceIndex[loc.Source] = srcIdx
	}
	m := mapping{
		generatedLine:   g.genLine,
		generatedColumn: g.genCol,
		sourceIndex:     srcIdx,
		originalLine:    loc.Start.Line - 1,
		originalColumn:  loc.Start.Column - 1,
	}
	if name != "" {
		idx, ok := g.nameIndex[name]
		if !ok {
			idx = len(g.names)
			g.names = append(g.names, name)
			g.nameIndex[name] = idx
		}
		m.nameIndex = idx
		m.hasName = true
	}
	g.mappings = append(g.mappings, m)
}

func (g *generator) sourceMapJSON(opts Options) string {
	doc := struct {
		Version        int      `json:"version"`
		File           string   `json:"file,omitempty"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent,omitempty"`
		Names          []string `json:"names"`
		Mappings       string   `json:"mappings"`
	}{
		Version:  3,
		File:     opts.File,
		Sources:  g.sources,
		Names:    g.names,
		Mappings: encodeMappings(g.mappings),
	}
	if opts.SourceContent != "" {
		content := make([]string, len(g.sources))
		if len(content) > 0 {
			content[0] = opts.SourceContent
		}
		doc.SourcesContent = content
	}
	out, err := json.Marshal(doc)
	if err != nil {
		// doc is a fixed, JSON-safe shape; marshaling it can't fail.
		panic(fmt.Sprintf("codegen: marshal source map: %v", err))
	}
	return string(out)
}
