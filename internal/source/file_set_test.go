package source

import (
	"testing"
)

func TestFileSetAddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.go", []byte("package a\n\n// hi\nfunc F() {}\n"))

	f := fs.Get(id)
	if f.Path != "test.go" {
		t.Fatalf("unexpected path: %q", f.Path)
	}
	if f.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}

	start, _ := fs.Resolve(Span{File: id, Start: 11, End: 12})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Fatalf("Resolve start = %+v", start)
	}
}

func TestFileSetOffsetOf(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.go", []byte("one\ntwo\nthree\n"))

	tests := []struct {
		name     string
		pos      LineCol
		expected uint32
	}{
		{"first line first col", LineCol{Line: 1, Col: 1}, 0},
		{"second line", LineCol{Line: 2, Col: 1}, 4},
		{"second line third col", LineCol{Line: 2, Col: 3}, 6},
		{"column past line end clamps", LineCol{Line: 1, Col: 99}, 3},
		{"line past file end clamps", LineCol{Line: 42, Col: 1}, 14},
		{"zero column treated as one", LineCol{Line: 3, Col: 0}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fs.OffsetOf(id, tt.pos); got != tt.expected {
				t.Fatalf("OffsetOf(%+v) = %d, want %d", tt.pos, got, tt.expected)
			}
		})
	}
}

func TestFileGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.go", []byte("one\ntwo\nthree"))
	f := fs.Get(id)

	tests := []struct {
		line     uint32
		expected string
	}{
		{0, ""},
		{1, "one"},
		{2, "two"},
		{3, "three"},
		{4, ""},
	}

	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.expected {
			t.Fatalf("GetLine(%d) = %q, want %q", tt.line, got, tt.expected)
		}
	}

	if n := f.LineCount(); n != 3 {
		t.Fatalf("LineCount = %d, want 3", n)
	}
}

func TestFileSetGetByPath(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("a/b.go", []byte("x"))

	if _, ok := fs.GetByPath("a/b.go"); !ok {
		t.Fatalf("expected to find a/b.go")
	}
	if _, ok := fs.GetByPath("missing.go"); ok {
		t.Fatalf("did not expect to find missing.go")
	}
	if fs.Len() != 1 {
		t.Fatalf("Len = %d, want 1", fs.Len())
	}
}
