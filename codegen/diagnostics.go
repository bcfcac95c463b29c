package codegen

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"
)

// Diagnostic is one reported failure: a source line, a message, and
// (optionally) the source text of that line plus a column to caret under,
// for CLI-facing rendering (§4.13, §7).
type Diagnostic struct {
	Line    int
	Column  int
	Message string
	Source  string // the offending source line, empty if unavailable
}

// Report formats d the way `hemc` prints a compile failure: a bold red
// "error:" prefix, the file:line, the offending source line if known, and
// a caret aligned under the reported column using East-Asian-width-aware
// column math (so carets land correctly under wide characters in string
// literals, §4.13).
func (d Diagnostic) Report(file string) string {
	var b strings.Builder
	errLabel := color.New(color.FgRed, color.Bold).Sprint("error:")
	fmt.Fprintf(&b, "%s %s:%d: %s\n", errLabel, file, d.Line, d.Message)
	if d.Source != "" {
		b.WriteString("  " + d.Source + "\n")
		b.WriteString("  " + caretLine(d.Source, d.Column) + "\n")
	}
	return b.String()
}

// caretLine renders a line of spaces and one caret under column col
// (1-indexed), accounting for double-width runes so the caret lines up
// visually rather than by byte/rune offset alone.
func caretLine(source string, col int) string {
	if col < 1 {
		col = 1
	}
	runes := []rune(source)
	if col > len(runes)+1 {
		col = len(runes) + 1
	}
	var sb strings.Builder
	for _, r := range runes[:col-1] {
		w := 1
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w = 2
		}
		sb.WriteString(strings.Repeat(" ", w))
	}
	sb.WriteString(color.New(color.FgGreen, color.Bold).Sprint("^"))
	return sb.String()
}

// ErrorReport renders every accumulated Context error (§4.13 "Failure
// Semantics": the generator accumulates and reports every failure found
// during a pass rather than stopping at the first one).
func ErrorReport(file string, errs []error) string {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "%s: %s: %s\n", color.New(color.FgRed, color.Bold).Sprint("error"), file, e.Error())
	}
	return b.String()
}
