// Package tensor implements the immutable rank-2 matrix values that back
// differentiable tensors.
//
// Storage and arithmetic are delegated to gonum's mat.Dense. A Matrix never
// exposes its backing store, so every value is immutable once constructed and
// every operation allocates its result.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable rows×cols matrix of float64 values.
type Matrix struct {
	dense *mat.Dense
}

// FromRows creates a matrix from a slice of rows.
// The rows are copied. Empty or ragged input returns ErrShapeMismatch.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("from rows: %w: matrix must be at least 1×1", ErrShapeMismatch)
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("from rows: %w: row %d has %d columns, want %d",
				ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}

	return &Matrix{dense: mat.NewDense(len(rows), cols, data)}, nil
}

// Full creates a matrix of the given shape filled with value.
// It panics if the shape is invalid.
func Full(shape Shape, value float64) *Matrix {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	data := make([]float64, shape.NumElements())
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return &Matrix{dense: mat.NewDense(shape.Rows, shape.Cols, data)}
}

// Zeros creates a matrix filled with zeros.
func Zeros(shape Shape) *Matrix {
	return Full(shape, 0)
}

// Ones creates a matrix filled with ones.
func Ones(shape Shape) *Matrix {
	return Full(shape, 1)
}

// Scalar creates a 1×1 matrix holding v.
func Scalar(v float64) *Matrix {
	return Full(Shape{Rows: 1, Cols: 1}, v)
}

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape {
	r, c := m.dense.Dims()
	return Shape{Rows: r, Cols: c}
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Rows returns a deep copy of the matrix contents as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	r, c := m.dense.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		copy(rows[i], m.dense.RawRowView(i))
	}
	return rows
}

// Add returns a + b. The shapes must be equal.
func Add(a, b *Matrix) (*Matrix, error) {
	if err := sameShape("add", a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Add(a.dense, b.dense)
	return &Matrix{dense: &out}, nil
}

// Sub returns a - b. The shapes must be equal.
func Sub(a, b *Matrix) (*Matrix, error) {
	if err := sameShape("sub", a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Sub(a.dense, b.dense)
	return &Matrix{dense: &out}, nil
}

// MulElem returns the element-wise (Hadamard) product of a and b.
func MulElem(a, b *Matrix) (*Matrix, error) {
	if err := sameShape("mul elem", a, b); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.MulElem(a.dense, b.dense)
	return &Matrix{dense: &out}, nil
}

// MatMul returns the matrix product a @ b.
// a.Cols must equal b.Rows, otherwise ErrDimensionMismatch is returned.
func MatMul(a, b *Matrix) (*Matrix, error) {
	if _, err := a.Shape().MatMulShape(b.Shape()); err != nil {
		return nil, fmt.Errorf("matmul: %w", err)
	}
	var out mat.Dense
	out.Mul(a.dense, b.dense)
	return &Matrix{dense: &out}, nil
}

// Scale returns f * a.
func Scale(f float64, a *Matrix) *Matrix {
	var out mat.Dense
	out.Scale(f, a.dense)
	return &Matrix{dense: &out}
}

// Neg returns -a.
func Neg(a *Matrix) *Matrix {
	return Scale(-1, a)
}

// SumAll returns the sum of all elements of a.
func SumAll(a *Matrix) float64 {
	return mat.Sum(a.dense)
}

// Equal reports whether a and b have the same shape and identical elements.
func Equal(a, b *Matrix) bool {
	return mat.Equal(a.dense, b.dense)
}

// EqualApprox reports whether a and b have the same shape and all elements
// are within tol of each other.
func EqualApprox(a, b *Matrix, tol float64) bool {
	return mat.EqualApprox(a.dense, b.dense, tol)
}

// String formats the matrix as rows of values.
func (m *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.dense, mat.Squeeze()))
}

func sameShape(op string, a, b *Matrix) error {
	sa, sb := a.Shape(), b.Shape()
	if !sa.Equal(sb) {
		return fmt.Errorf("%s: %w: %v vs %v", op, ErrShapeMismatch, sa, sb)
	}
	return nil
}
