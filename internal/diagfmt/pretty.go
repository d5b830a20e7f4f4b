package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"doctag/internal/diag"
	"doctag/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	ignoreColor  = color.New(color.FgHiBlack)
	gutterColor  = color.New(color.FgHiBlack)
	caretColor   = color.New(color.FgHiGreen, color.Bold)
)

// Pretty renders diagnostics in a human-readable form. It walks
// bag.Items() in order (call bag.Sort() beforehand for deterministic
// output). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a caret underline, then notes in the
// same shape. Ignore-severity diagnostics are skipped unless
// opts.ShowIgnored is set; they exist in the bag either way.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevIgnore && !opts.ShowIgnored {
			continue
		}
		prettyOne(w, &d, fs, opts)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	path := f.FormatPath(opts.PathMode.name(), fs.BaseDir())

	sev := d.Severity.String()
	code := d.Code.ID()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		code = gutterColor.Sprint(code)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, d.Message)

	printContext(w, f, start, d.Primary.Len(), opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			nstart, _ := fs.Resolve(n.Span)
			npath := nf.FormatPath(opts.PathMode.name(), fs.BaseDir())
			label := "note"
			if opts.Color {
				label = infoColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", label, npath, nstart.Line, nstart.Col, n.Msg)
		}
	}

	if opts.ShowFixes {
		for _, fx := range d.Fixes {
			label := "fix"
			if opts.Color {
				label = caretColor.Sprint(label)
			}
			fmt.Fprintf(w, "  %s: %s\n", label, fx.Title)
		}
	}
}

func printContext(w io.Writer, f *source.File, start source.LineCol, spanLen uint32, opts PrettyOpts) {
	first := int(start.Line) - int(opts.Context)
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + int(opts.Context)

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln))
		if text == "" && uint32(ln) != start.Line && ln > f.LineCount() {
			continue
		}
		gutter := fmt.Sprintf("%5d | ", ln)
		if opts.Color {
			gutter = gutterColor.Sprint(gutter)
		}
		fmt.Fprintf(w, "%s%s\n", gutter, expandTabs(text))

		if uint32(ln) == start.Line {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", 8), caretLine(text, start.Col, spanLen, opts.Color))
		}
	}
}

// caretLine builds the ^~~~ underline aligned under the diagnostic
// column, taking display width of the preceding text into account.
func caretLine(lineText string, col uint32, spanLen uint32, colored bool) string {
	prefix := lineText
	if int(col-1) <= len(lineText) {
		prefix = lineText[:col-1]
	}
	pad := runewidth.StringWidth(expandTabs(prefix))

	width := int(spanLen)
	if width < 1 {
		width = 1
	}
	if rest := len(lineText) - len(prefix); width > rest && rest > 0 {
		width = rest
	}

	marker := "^" + strings.Repeat("~", width-1)
	if colored {
		marker = caretColor.Sprint(marker)
	}
	return strings.Repeat(" ", pad) + marker
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	case diag.SevInfo:
		return infoColor
	default:
		return ignoreColor
	}
}
