// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dunder/internal/autodiff"
	"github.com/born-ml/dunder/internal/autodiff/ops"
	"github.com/born-ml/dunder/internal/tensor"
)

// Tensor is a matrix value that records how it was computed.
type Tensor = autodiff.Tensor

// Matrix is the immutable data held by a Tensor and its gradient.
type Matrix = tensor.Matrix

// Shape is the number of rows and columns of a matrix.
type Shape = tensor.Shape

// Op identifies the operation that produced a Tensor.
type Op = ops.Kind

// Operations recorded by tensors.
const (
	OpLeaf       = ops.Leaf
	OpAdd        = ops.Add
	OpSub        = ops.Sub
	OpMatMul     = ops.MatMul
	OpScaleLeft  = ops.ScaleLeft
	OpScaleRight = ops.ScaleRight
	OpSum        = ops.Sum
)

// Errors.
var (
	ErrShapeMismatch     = tensor.ErrShapeMismatch
	ErrDimensionMismatch = tensor.ErrDimensionMismatch
)

// New creates a leaf tensor from rows of data. The rows are copied.
func New(rows [][]float64) (*Tensor, error) {
	return autodiff.New(rows)
}

// MustNew is like New but panics on error.
func MustNew(rows [][]float64) *Tensor {
	t, err := autodiff.New(rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRows creates a matrix from rows of data.
func FromRows(rows [][]float64) (*Matrix, error) {
	return tensor.FromRows(rows)
}

// FromMatrix creates a leaf tensor holding m.
func FromMatrix(m *Matrix) *Tensor {
	return autodiff.FromMatrix(m)
}

// Scalar creates a 1×1 leaf tensor. Infix expressions such as a*2 are
// lowered to a.Mul(tensor.Scalar(2)).
func Scalar(v float64) *Tensor {
	return autodiff.Scalar(v)
}

// Add returns the element-wise sum a + b.
func Add(a, b *Tensor) (*Tensor, error) {
	return autodiff.Add(a, b)
}

// Sub returns the element-wise difference a - b.
func Sub(a, b *Tensor) (*Tensor, error) {
	return autodiff.Sub(a, b)
}

// MatMul returns the matrix product a @ b.
func MatMul(a, b *Tensor) (*Tensor, error) {
	return autodiff.MatMul(a, b)
}

// Mul scales when exactly one operand is 1×1 and is MatMul otherwise.
func Mul(a, b *Tensor) (*Tensor, error) {
	return autodiff.Mul(a, b)
}

// Sum returns the 1×1 sum of all elements of a.
func Sum(a *Tensor) (*Tensor, error) {
	return autodiff.Sum(a)
}
