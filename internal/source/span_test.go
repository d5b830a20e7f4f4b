package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "disjoint spans combine",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "contained span changes nothing",
			span:     Span{File: 1, Start: 10, End: 40},
			other:    Span{File: 1, Start: 15, End: 20},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "different files do not combine",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 5},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Fatalf("Cover = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{File: 0, Start: 5, End: 5}
	if !s.Empty() || s.Len() != 0 {
		t.Fatalf("expected empty zero-length span")
	}
	s.End = 9
	if s.Empty() || s.Len() != 4 {
		t.Fatalf("expected non-empty span of length 4")
	}
}
