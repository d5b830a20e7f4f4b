package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		expected    []byte
		wantChanged bool
	}{
		{
			name:        "no carriage returns",
			input:       []byte("a\nb\n"),
			expected:    []byte("a\nb\n"),
			wantChanged: false,
		},
		{
			name:        "crlf pairs replaced",
			input:       []byte("a\r\nb\r\n"),
			expected:    []byte("a\nb\n"),
			wantChanged: true,
		},
		{
			name:        "lone cr untouched",
			input:       []byte("a\rb"),
			expected:    []byte("a\rb"),
			wantChanged: false,
		},
		{
			name:        "mixed",
			input:       []byte("a\r\nb\rc\n"),
			expected:    []byte("a\nb\rc\n"),
			wantChanged: true,
		},
		{
			name:        "empty",
			input:       []byte(""),
			expected:    []byte(""),
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Fatalf("normalizeCRLF(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if changed != tt.wantChanged {
				t.Fatalf("normalizeCRLF(%q) changed = %v, want %v", tt.input, changed, tt.wantChanged)
			}
		})
	}
}

func TestRemoveBOM(t *testing.T) {
	withBOM := []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}
	got, had := removeBOM(withBOM)
	if !had || string(got) != "hi" {
		t.Fatalf("removeBOM: got %q, had=%v", got, had)
	}

	plain := []byte("hi")
	got, had = removeBOM(plain)
	if had || string(got) != "hi" {
		t.Fatalf("removeBOM on plain input: got %q, had=%v", got, had)
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("one\ntwo\nthree")
	idx := buildLineIndex(content)

	tests := []struct {
		name     string
		off      uint32
		expected LineCol
	}{
		{"start of file", 0, LineCol{Line: 1, Col: 1}},
		{"middle of first line", 2, LineCol{Line: 1, Col: 3}},
		{"newline belongs to its line", 3, LineCol{Line: 1, Col: 4}},
		{"start of second line", 4, LineCol{Line: 2, Col: 1}},
		{"start of third line", 8, LineCol{Line: 3, Col: 1}},
		{"last byte", 12, LineCol{Line: 3, Col: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toLineCol(idx, tt.off); got != tt.expected {
				t.Fatalf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.expected)
			}
		})
	}
}

func TestToLineColEmptyIndex(t *testing.T) {
	if got := toLineCol(nil, 5); got != (LineCol{Line: 1, Col: 6}) {
		t.Fatalf("toLineCol with empty index = %+v", got)
	}
}

func TestLineStartOffset(t *testing.T) {
	content := []byte("one\ntwo\nthree")
	idx := buildLineIndex(content)
	lenContent := uint32(len(content))

	tests := []struct {
		name     string
		line     uint32
		expected uint32
		ok       bool
	}{
		{"line zero is invalid", 0, 0, false},
		{"first line", 1, 0, true},
		{"second line", 2, 4, true},
		{"third line", 3, 8, true},
		{"past the end", 4, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lineStartOffset(idx, lenContent, tt.line)
			if got != tt.expected || ok != tt.ok {
				t.Fatalf("lineStartOffset(%d) = (%d, %v), want (%d, %v)",
					tt.line, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
