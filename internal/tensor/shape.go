package tensor

import "fmt"

// Shape represents the dimensions of a rank-2 tensor.
type Shape struct {
	Rows int
	Cols int
}

// NumElements returns the total number of elements in the matrix.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks if the shape is valid (both dimensions > 0).
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: invalid shape %v (dimensions must be > 0)", ErrShapeMismatch, s)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// IsScalar reports whether the shape is 1×1.
func (s Shape) IsScalar() bool {
	return s.Rows == 1 && s.Cols == 1
}

// MatMulShape returns the shape of s @ other.
// The inner dimensions must agree: s.Cols == other.Rows.
func (s Shape) MatMulShape(other Shape) (Shape, error) {
	if s.Cols != other.Rows {
		return Shape{}, fmt.Errorf("%w: %v @ %v (inner dimensions %d vs %d)",
			ErrDimensionMismatch, s, other, s.Cols, other.Rows)
	}
	return Shape{Rows: s.Rows, Cols: other.Cols}, nil
}

// String returns the shape as "rows×cols".
func (s Shape) String() string {
	return fmt.Sprintf("%d×%d", s.Rows, s.Cols)
}
