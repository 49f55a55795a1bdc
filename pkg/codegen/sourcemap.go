package codegen

import "strings"

// base64 is the standard source-map VLQ alphabet.
const base64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ appends value's base64-VLQ encoding to buf. A VLQ digit packs
// a continuation bit, then four value bits, then (on the first digit
// only) a sign bit: the standard layout used by every V3 source-map
// implementation, including esbuild's (internal/sourcemap/sourcemap.go).
func encodeVLQ(buf *strings.Builder, value int) {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}
	for {
		digit := vlq & 31
		vlq >>= 5
		if vlq != 0 {
			digit |= 32
		}
		buf.WriteByte(base64[digit])
		if vlq == 0 {
			break
		}
	}
}

// mapping is one V3 source-map segment, in the generated-coordinate
// order the encoder expects: 0-based line/column, both generated and
// original, plus an optional name index.
type mapping struct {
	generatedLine   int
	generatedColumn int
	sourceIndex     int
	originalLine    int
	originalColumn  int
	nameIndex       int
	hasName         bool
}

// encodeMappings renders the full VLQ `mappings` field: ';' separates
// generated lines, ',' separates segments on the same line, and every
// field within a segment is delta-encoded against the previous segment's
// field. Only the generated-column delta restarts from 0 on each new
// generated line; the source index, original line/column and name index
// carry over from the previous segment across lines.
func encodeMappings(mappings []mapping) string {
	var out strings.Builder
	prevGeneratedColumn := 0
	prevSourceIndex := 0
	prevOriginalLine := 0
	prevOriginalColumn := 0
	prevNameIndex := 0
	currentLine := 0

	for i, m := range mappings {
		for currentLine < m.generatedLine {
			out.WriteByte(';')
			currentLine++
			prevGeneratedColumn = 0
		}
		if i > 0 && currentLine == mappings[i-1].generatedLine {
			out.WriteByte(',')
		}

		encodeVLQ(&out, m.generatedColumn-prevGeneratedColumn)
		encodeVLQ(&out, m.sourceIndex-prevSourceIndex)
		encodeVLQ(&out, m.originalLine-prevOriginalLine)
		encodeVLQ(&out, m.originalColumn-prevOriginalColumn)
		if m.hasName {
			encodeVLQ(&out, m.nameIndex-prevNameIndex)
			prevNameIndex = m.nameIndex
		}

		prevGeneratedColumn = m.generatedColumn
		prevSourceIndex = m.sourceIndex
		prevOriginalLine = m.originalLine
		prevOriginalColumn = m.originalColumn
	}
	return out.String()
}
