// Package errors implements the unified diagnostic pipeline: typed errors
// carrying a code, a source location, a rendered context snippet, and
// optional suggestions (spec §7).
package errors

import (
	"fmt"
	"strings"

	"github.com/hlvm-dev/hql/pkg/ast"
)

// Diagnostic is the single base type every pipeline stage raises.
type Diagnostic struct {
	Code          Code
	Kind          Kind
	Message       string
	Location      ast.Position
	ContextLines  []string
	HighlightLine int // index into ContextLines, 0-based
	Suggestions   []string
	OriginalCause error

	reported bool // set by Reporter so a diagnostic prints at most once
}

// New creates a Diagnostic with an explicit code.
func New(code Code, message string, loc ast.Position) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Kind:     KindOf(code),
		Message:  message,
		Location: loc,
	}
}

// Inferred creates a Diagnostic whose code is inferred from message via a
// small pattern table (spec §7: "infers a code from the message via a
// small pattern table when a code is not supplied"). Use New when the
// caller already knows the precise code; Inferred is for call sites that
// only have a message, such as errors surfaced from the interpreter.
func Inferred(message string, loc ast.Position) *Diagnostic {
	return New(inferCode(message), message, loc)
}

// pattern table: substring -> code. Checked in order; first match wins.
var inferPatterns = []struct {
	substr string
	code   Code
}{
	{"unclosed list", CodeUnclosedList},
	{"unclosed string", CodeUnclosedString},
	{"unclosed comment", CodeUnclosedComment},
	{"unexpected token", CodeUnexpectedToken},
	{"unexpected end of", CodeUnexpectedEOF},
	{"invalid character", CodeInvalidChar},
	{"module not found", CodeModuleNotFound},
	{"circular import involving macro", CodeCircularMacro},
	{"not exported", CodeExportMissing},
	{"duplicate declaration", CodeDuplicateDecl},
	{"temporal dead zone", CodeTemporalDeadZone},
	{"macro not found", CodeMacroNotFound},
	{"macro expansion failed", CodeMacroExpansionFailed},
	{"recursion limit", CodeMacroRecursionLimit},
	{"undefined variable", CodeUndefinedVariable},
	{"not callable", CodeNotCallable},
	{"wrong number of arguments", CodeWrongArity},
}

func inferCode(message string) Code {
	lower := strings.ToLower(message)
	for _, p := range inferPatterns {
		if strings.Contains(lower, p.substr) {
			return p.code
		}
	}
	return CodeUnsupportedIRNode
}

// WithSuggestion appends a one-line suggestion and returns d for chaining.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestions = append(d.Suggestions, s)
	return d
}

// WithCause attaches the original error that triggered this diagnostic.
func (d *Diagnostic) WithCause(err error) *Diagnostic {
	d.OriginalCause = err
	return d
}

// WithContext attaches rendered source lines, with line at HighlightLine
// being the offending one.
func (d *Diagnostic) WithContext(lines []string, highlight int) *Diagnostic {
	d.ContextLines = lines
	d.HighlightLine = highlight
	return d
}

// Unwrap exposes the original cause for errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error { return d.OriginalCause }

// Error implements the error interface, producing the enhanced message
// form spec §7 requires: "[HQLNNNN] <msg> at <file>:<line>:<col>",
// deduplicating any code prefix the message already carries.
func (d *Diagnostic) Error() string {
	msg := d.Message
	prefix := fmt.Sprintf("[HQL%04d]", d.Code)
	if strings.HasPrefix(msg, prefix) {
		msg = strings.TrimSpace(strings.TrimPrefix(msg, prefix))
	}
	if d.Location.Valid() {
		return fmt.Sprintf("%s %s at %s:%d:%d", prefix, msg, d.Location.FilePath, d.Location.Line, d.Location.Column)
	}
	return fmt.Sprintf("%s %s", prefix, msg)
}

// Format renders the full user-facing diagnostic: header, colorless
// source context with a caret, a "Where" line, a suggestion, and a
// documentation URL, per spec §6's error-output shape. Console rendering
// with color is a CLI-only concern layered on top in pkg/ui.
func (d *Diagnostic) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "error[HQL%04d]: %s\n\n", d.Code, d.Message)

	if len(d.ContextLines) > 0 && d.Location.Valid() {
		startLine := d.Location.Line - d.HighlightLine
		for i, line := range d.ContextLines {
			lineNo := startLine + i
			fmt.Fprintf(&b, "  %4d │ %s\n", lineNo, line)
			if i == d.HighlightLine {
				indent := expandTabsToColumn(line, d.Location.Column-1)
				b.WriteString("       │ ")
				b.WriteString(strings.Repeat(" ", indent))
				b.WriteString("^\n")
			}
		}
		b.WriteString("\n")
	}

	if d.Location.Valid() {
		fmt.Fprintf(&b, "Where: %s:%d:%d\n", d.Location.FilePath, d.Location.Line, d.Location.Column)
	}

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&b, "Suggestion: %s\n", strings.Join(d.Suggestions, "; "))
	} else if s, ok := suggestionTable[d.Code]; ok {
		fmt.Fprintf(&b, "Suggestion: %s\n", s)
	}

	if url := docURL(d.Kind); url != "" {
		fmt.Fprintf(&b, "For more information, see: %s\n", url)
	}

	return b.String()
}

// expandTabsToColumn returns the caret indent for column col (0-based
// rune offset into line), counting each tab as 4 columns (spec §7:
// "caret pointing at the column with tab-expansion to 4 columns").
func expandTabsToColumn(line string, col int) int {
	indent := 0
	for i, r := range []rune(line) {
		if i >= col {
			break
		}
		if r == '\t' {
			indent += 4
		} else {
			indent++
		}
	}
	return indent
}
