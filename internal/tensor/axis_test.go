package tensor

import (
	"errors"
	"testing"
)

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		axis, rank, want int
	}{
		{0, 1, 0},
		{-1, 1, 0},
		{2, 3, 2},
		{-1, 3, 2},
		{-3, 3, 0},
		{-1, 6, 5},
	}
	for _, tt := range tests {
		got, err := NormalizeAxis(tt.axis, tt.rank)
		if err != nil {
			t.Errorf("NormalizeAxis(%d, %d) failed: %v", tt.axis, tt.rank, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeAxis(%d, %d) = %d, want %d", tt.axis, tt.rank, got, tt.want)
		}
	}
}

func TestNormalizeAxisOutOfRange(t *testing.T) {
	for _, tt := range []struct{ axis, rank int }{{3, 3}, {-4, 3}, {0, 0}} {
		_, err := NormalizeAxis(tt.axis, tt.rank)
		if !errors.Is(err, ErrAxisOutOfRange) {
			t.Errorf("NormalizeAxis(%d, %d) error = %v, want ErrAxisOutOfRange", tt.axis, tt.rank, err)
		}
	}
}

func TestStrideCounts(t *testing.T) {
	shape := Shape{2, 3, 4, 5}
	tests := []struct {
		axis              int
		outer, mid, inner int
	}{
		{0, 1, 2, 60},
		{1, 2, 3, 20},
		{2, 6, 4, 5},
		{3, 24, 5, 1},
	}
	for _, tt := range tests {
		outer, mid, inner := shape.StrideCounts(tt.axis)
		if outer != tt.outer || mid != tt.mid || inner != tt.inner {
			t.Errorf("StrideCounts(%d) = (%d, %d, %d), want (%d, %d, %d)",
				tt.axis, outer, mid, inner, tt.outer, tt.mid, tt.inner)
		}
	}
}

// The (outer, mid, inner) decomposition must visit every flat index exactly once
// and agree with the row-major strides.
func TestStrideCountsCoverFlatIndices(t *testing.T) {
	shape := Shape{3, 2, 4}
	strides := shape.ComputeStrides()
	for axis := range shape {
		outer, mid, inner := shape.StrideCounts(axis)
		seen := make([]bool, shape.NumElements())
		for o := 0; o < outer; o++ {
			for m := 0; m < mid; m++ {
				for i := 0; i < inner; i++ {
					idx := o*mid*inner + m*inner + i
					if seen[idx] {
						t.Fatalf("axis %d: index %d visited twice", axis, idx)
					}
					seen[idx] = true
				}
			}
		}
		for idx, ok := range seen {
			if !ok {
				t.Fatalf("axis %d: index %d never visited", axis, idx)
			}
		}
		if strides[axis] != inner {
			t.Errorf("axis %d: stride %d, inner %d", axis, strides[axis], inner)
		}
	}
}

func TestSqueezeAndWithUnitAxis(t *testing.T) {
	shape := Shape{2, 3, 4}
	if got := shape.Squeeze(1); !got.Equal(Shape{2, 4}) {
		t.Errorf("Squeeze(1) = %v, want [2 4]", got)
	}
	if got := shape.WithUnitAxis(2); !got.Equal(Shape{2, 3, 1}) {
		t.Errorf("WithUnitAxis(2) = %v, want [2 3 1]", got)
	}
	if !shape.Equal(Shape{2, 3, 4}) {
		t.Errorf("original shape mutated: %v", shape)
	}
	if got := (Shape{5}).Squeeze(0); !got.Equal(Shape{1}) {
		t.Errorf("rank-1 Squeeze = %v, want [1]", got)
	}
}

func TestParseShape(t *testing.T) {
	got, err := ParseShape("2, 3,4")
	if err != nil {
		t.Fatalf("ParseShape failed: %v", err)
	}
	if !got.Equal(Shape{2, 3, 4}) {
		t.Errorf("ParseShape = %v, want [2 3 4]", got)
	}
	if _, err := ParseShape("2,x"); err == nil {
		t.Error("expected error for non-numeric extent")
	}
	if _, err := ParseShape("2,0"); err == nil {
		t.Error("expected error for zero extent")
	}
}
