package writetag

import (
	"fmt"

	"doctag/internal/decl"
	"doctag/internal/diag"
	"doctag/internal/doccomment"
	"doctag/internal/source"
)

// Check verifies one declaration against the rule and reports the
// outcome. Exactly one missing-tag diagnostic is emitted when no comment
// precedes the declaration or the comment never mentions the tag; when
// the tag occurs on N lines, exactly N diagnostics are emitted, each one
// either tag-found (at the rule's tag severity) or format-mismatch (at
// the rule's normal severity).
//
// A rule with no tag configured checks nothing.
func (r *Rule) Check(d decl.Declaration, comments *doccomment.Index, fs *source.FileSet, rep diag.Reporter) {
	if r.tagRe == nil {
		return
	}

	cmt, ok := comments.Before(d.Line)
	if !ok {
		r.reportMissing(d, fs, rep)
		return
	}

	matches := findTag(r.tagRe, cmt.Lines)
	if len(matches) == 0 {
		r.reportMissing(d, fs, rep)
		return
	}

	for _, m := range matches {
		// Comment lines are counted backward from the declaration line,
		// so a match on offset i of an n-line block lands on its own
		// physical line.
		line := int(d.Line) + m.line - len(cmt.Lines)
		if line < 1 {
			line = 1
		}
		pos := source.LineCol{Line: uint32(line), Col: d.Col}
		span := pointSpan(fs, d.Span.File, pos)

		if r.format == nil || r.format.FindStringIndex(m.content) != nil {
			rep.Report(diag.TagWritten, r.tagSeverity, span,
				fmt.Sprintf("doc tag %s=%s", r.tag, m.content), nil, nil)
		} else {
			rep.Report(diag.TagBadFormat, r.severity, span,
				fmt.Sprintf("tag %s must match pattern %q", r.tag, r.formatText), nil, nil)
		}
	}
}

func (r *Rule) reportMissing(d decl.Declaration, fs *source.FileSet, rep diag.Reporter) {
	span := pointSpan(fs, d.Span.File, source.LineCol{Line: d.Line, Col: d.Col})
	lineStart := fs.OffsetOf(d.Span.File, source.LineCol{Line: d.Line, Col: 1})

	fix := diag.Fix{
		Title: fmt.Sprintf("add a %s tag to the documentation comment", r.tag),
		Edits: []diag.FixEdit{{
			Span:    source.Span{File: d.Span.File, Start: lineStart, End: lineStart},
			NewText: fmt.Sprintf("// %s \n", r.tag),
		}},
	}

	rep.Report(diag.TagMissing, r.severity, span,
		fmt.Sprintf("documentation comment is missing %s tag", r.tag),
		nil, []diag.Fix{fix})
}

func pointSpan(fs *source.FileSet, file source.FileID, pos source.LineCol) source.Span {
	off := fs.OffsetOf(file, pos)
	return source.Span{File: file, Start: off, End: off}
}
