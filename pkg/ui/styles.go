// Package ui provides styled CLI output for the hqlc compiler driver
// (C14), using lipgloss. Library-mode callers of pkg/compiler never
// import this package; it is CLI presentation layered on top of
// pkg/errors' colorless Diagnostic.Format().
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#5AF78E")
	colorWarning = lipgloss.Color("#F7DC6F")
	colorError   = lipgloss.Color("#FF6B9D")
	colorMuted   = lipgloss.Color("#6C7086")
	colorText    = lipgloss.Color("#CDD6F4")
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(colorText).
			Width(12)

	styleStepTime = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)

	styleCodeLine  = lipgloss.NewStyle().Foreground(colorText)
	styleGutter    = lipgloss.NewStyle().Foreground(colorMuted)
	styleCaretLine = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

// Phase names the pipeline stages a build prints progress for, in the
// order spec §4.10's pipeline runs them.
type Phase string

const (
	PhaseRead      Phase = "Read"
	PhaseTransform Phase = "Transform"
	PhaseImport    Phase = "Import"
	PhaseExpand    Phase = "Expand"
	PhaseBuildIR   Phase = "Build IR"
	PhaseValidate  Phase = "Validate"
	PhaseEmit      Phase = "Emit"
)

var allPhases = []Phase{PhaseRead, PhaseTransform, PhaseImport, PhaseExpand, PhaseBuildIR, PhaseValidate, PhaseEmit}

// StepStatus is the outcome of one pipeline phase.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepFailed
)

// BuildOutput renders one compile's progress and final summary.
type BuildOutput struct {
	startTime time.Time
}

// NewBuildOutput starts timing a build.
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the compiler banner.
func (b *BuildOutput) PrintHeader(version string) {
	fmt.Println(styleHeader.Render("hqlc") + " " + styleMuted.Render("v"+version))
}

// PrintFileStart announces the file being compiled.
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	arrow := styleMuted.Render("->")
	fmt.Printf("  %s %s %s\n", inputPath, arrow, outputPath)
}

// PrintStep reports one pipeline phase's outcome.
func (b *BuildOutput) PrintStep(phase Phase, status StepStatus, d time.Duration, message string) {
	var icon, rendered string
	switch status {
	case StepSuccess:
		icon, rendered = "+", styleSuccess.Render("done")
	case StepSkipped:
		icon, rendered = "o", styleMuted.Render("skipped")
	case StepFailed:
		icon, rendered = "x", styleError.Render("failed")
	}

	line := fmt.Sprintf("  %s %s %s", icon, styleStepLabel.Render(string(phase)), rendered)
	if d > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(d)+")")
	}
	fmt.Println(line)

	if message != "" {
		fmt.Println(styleMuted.Render("    " + message))
	}
}

// PrintSummary reports the build's final outcome.
func (b *BuildOutput) PrintSummary(success bool) {
	elapsed := time.Since(b.startTime)
	if success {
		fmt.Printf("%s built in %s\n", styleSuccess.Render("done"), styleStepTime.Render(formatDuration(elapsed)))
		return
	}
	fmt.Println(styleError.Render("build failed"))
}

// PrintDiagnostic colorizes a Diagnostic's own Format() output: the
// header in red, the caret line in red/bold, gutter and surrounding
// context lines muted, everything else passed through unchanged.
func PrintDiagnostic(d *hqlerrors.Diagnostic) {
	fmt.Print(Colorize(d))
}

// Colorize returns d's rendered form with ANSI styling applied, without
// printing it — used by tests and by callers that want to buffer output.
func Colorize(d *hqlerrors.Diagnostic) string {
	plain := d.Format()
	lines := strings.Split(plain, "\n")

	var out strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "error["):
			out.WriteString(styleError.Render(line))
		case strings.HasPrefix(line, "Where:"):
			out.WriteString(styleMuted.Render(line))
		case strings.HasPrefix(line, "Suggestion:"):
			out.WriteString(styleWarning.Render(line))
		case isCaretLine(line):
			out.WriteString(styleCaretLine.Render(line))
		case strings.Contains(line, "│"):
			out.WriteString(styleGutter.Render(line))
		default:
			out.WriteString(line)
		}
		out.WriteByte('\n')
	}
	return strings.TrimSuffix(out.String(), "\n")
}

// isCaretLine reports whether line is one of Diagnostic.Format()'s caret
// lines: a "│" gutter followed only by spaces and a single trailing "^".
func isCaretLine(line string) bool {
	idx := strings.IndexByte(line, '│')
	if idx < 0 {
		return false
	}
	after := line[idx+1:]
	return strings.TrimSpace(after) == "^"
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// AllPhases returns the pipeline phases in run order, for a caller that
// wants to print a fixed-order progress list before results are known.
func AllPhases() []Phase {
	out := make([]Phase, len(allPhases))
	copy(out, allPhases)
	return out
}
