package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"doctag/internal/diag"
	"doctag/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.go", []byte("package sample\n\ntype Widget struct{}\n"))

	bag := diag.NewBag(10)
	// "type" keyword of line 3 starts at byte 16.
	bag.Add(diag.New(diag.SevError, diag.TagMissing,
		source.Span{File: id, Start: 16, End: 20},
		"documentation comment is missing @author tag"))
	return bag, fs, id
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	bag, fs, _ := sampleBag()

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: false, Context: 0})

	out := buf.String()
	if !strings.Contains(out, "sample.go:3:1: ERROR TAG2001: documentation comment is missing @author tag") {
		t.Fatalf("missing header line in output:\n%s", out)
	}
	if !strings.Contains(out, "    3 | type Widget struct{}") {
		t.Fatalf("missing context line in output:\n%s", out)
	}
	if !strings.Contains(out, "^~~~") {
		t.Fatalf("missing caret underline in output:\n%s", out)
	}
}

func TestPrettyHidesIgnoredByDefault(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.go", []byte("package sample\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevIgnore, diag.TagMissing,
		source.Span{File: id, Start: 0, End: 0}, "suppressed"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if buf.Len() != 0 {
		t.Fatalf("ignore-severity diagnostic leaked into output:\n%s", buf.String())
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{ShowIgnored: true})
	if !strings.Contains(buf.String(), "suppressed") {
		t.Fatalf("ShowIgnored did not print the diagnostic")
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.go", []byte("package sample\n\ntype Widget struct{}\n"))

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.TagMissing,
		source.Span{File: id, Start: 16, End: 20}, "missing tag")
	d = d.WithNote(source.Span{File: id, Start: 0, End: 7}, "package declared here")
	d = d.WithFix("add a @author tag", diag.FixEdit{
		Span:    source.Span{File: id, Start: 16, End: 16},
		NewText: "// @author \n",
	})
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true})

	out := buf.String()
	if !strings.Contains(out, "note: sample.go:1:1: package declared here") {
		t.Fatalf("note not rendered:\n%s", out)
	}
	if !strings.Contains(out, "fix: add a @author tag") {
		t.Fatalf("fix not rendered:\n%s", out)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	bag, fs, _ := sampleBag()

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeFixes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON produced: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "TAG2001" {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if d.Location.StartLine != 3 || d.Location.StartCol != 1 {
		t.Fatalf("positions missing: %+v", d.Location)
	}
}

func TestJSONIncludesIgnoredAndTruncates(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("sample.go", []byte("package sample\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevIgnore, diag.TagMissing, source.Span{File: id}, "first"))
	bag.Add(diag.New(diag.SevInfo, diag.TagWritten, source.Span{File: id}, "second"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Diagnostics) != 1 || out.Count != 2 {
		t.Fatalf("truncation wrong: %+v", out)
	}
	if out.Diagnostics[0].Severity != "ignore" {
		t.Fatalf("ignore severity must appear in JSON output: %+v", out.Diagnostics[0])
	}
}
