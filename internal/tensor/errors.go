package tensor

import "errors"

var (
	// ErrShapeMismatch is returned when operand shapes disagree for an
	// element-wise operation, or when input rows are not rectangular.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDimensionMismatch is returned when the inner dimensions of a matrix
	// product disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
