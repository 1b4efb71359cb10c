// ABOUTME: Tests for Span containment used by the leak scanner
// ABOUTME: Covers exact fit, partial overlap, and adjacency cases
package models

import "testing"

func TestSpanContains(t *testing.T) {
	tests := []struct {
		name  string
		outer Span
		inner Span
		want  bool
	}{
		{"exact fit", Span{10, 20}, Span{10, 20}, true},
		{"strictly inside", Span{10, 20}, Span{12, 18}, true},
		{"touches left edge", Span{10, 20}, Span{10, 15}, true},
		{"touches right edge", Span{10, 20}, Span{15, 20}, true},
		{"overlaps left", Span{10, 20}, Span{8, 15}, false},
		{"overlaps right", Span{10, 20}, Span{15, 25}, false},
		{"disjoint before", Span{10, 20}, Span{0, 5}, false},
		{"disjoint after", Span{10, 20}, Span{25, 30}, false},
		{"inner larger than outer", Span{10, 20}, Span{5, 25}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Span%v.Contains(%v) = %v, want %v", tt.outer, tt.inner, got, tt.want)
			}
		})
	}
}

func TestSpanLen(t *testing.T) {
	if got := (Span{Start: 4, End: 9}).Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := (Span{Start: 3, End: 3}).Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
