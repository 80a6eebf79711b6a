// Package autodiff implements differentiable rank-2 tensors with reverse-mode
// automatic differentiation.
//
// Architecture:
//   - Tensor: immutable matrix data plus an optional accumulated gradient
//   - Provenance: each derived tensor records its operation Kind and its
//     ordered operands (parents); leaves have neither
//   - Backward: builds an arena of the reachable graph, orders it
//     topologically and dispatches each recorded Kind to its backward rule
//
// Usage:
//
//	a, _ := autodiff.New([][]float64{{1, 2}, {3, 4}})
//	b, _ := autodiff.New([][]float64{{5, 6}, {7, 8}})
//	c := a.MatMul(b)
//
//	if err := c.Backward(); err != nil {
//	    return err
//	}
//	fmt.Println(a.Grad()) // [[12 14] [12 14]]
//
// Operations come in two forms. Package functions (Add, Sub, MatMul, Mul, Sum)
// return an error on shape violations. Methods of the same name panic with
// that error instead, so that expressions like a.Mul(b).Add(c) chain.
package autodiff

import (
	"fmt"

	"github.com/born-ml/dunder/internal/autodiff/ops"
	"github.com/born-ml/dunder/internal/tensor"
)

// Tensor is a matrix value that records how it was computed.
type Tensor struct {
	data    *tensor.Matrix
	grad    *tensor.Matrix // nil until the first gradient contribution
	op      ops.Kind
	parents []*Tensor
}

// New creates a leaf tensor from rows of data.
// Empty or ragged rows return tensor.ErrShapeMismatch.
func New(rows [][]float64) (*Tensor, error) {
	m, err := tensor.FromRows(rows)
	if err != nil {
		return nil, err
	}
	return FromMatrix(m), nil
}

// FromMatrix creates a leaf tensor holding m.
func FromMatrix(m *tensor.Matrix) *Tensor {
	return &Tensor{data: m, op: ops.Leaf}
}

// Scalar creates a 1×1 leaf tensor holding v.
func Scalar(v float64) *Tensor {
	return FromMatrix(tensor.Scalar(v))
}

// Data returns the tensor's value.
func (t *Tensor) Data() *tensor.Matrix {
	return t.data
}

// Rows returns a copy of the tensor's value as rows.
func (t *Tensor) Rows() [][]float64 {
	return t.data.Rows()
}

// Shape returns the tensor's dimensions.
func (t *Tensor) Shape() tensor.Shape {
	return t.data.Shape()
}

// Grad returns the accumulated gradient, or nil if none has been computed.
func (t *Tensor) Grad() *tensor.Matrix {
	return t.grad
}

// ZeroGrad discards the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// Op returns the operation that produced the tensor (ops.Leaf for leaves).
func (t *Tensor) Op() ops.Kind {
	return t.op
}

// Parents returns the operands the tensor was computed from, in order.
func (t *Tensor) Parents() []*Tensor {
	parents := make([]*Tensor, len(t.parents))
	copy(parents, t.parents)
	return parents
}

// IsLeaf reports whether the tensor was created directly from data.
func (t *Tensor) IsLeaf() bool {
	return t.op == ops.Leaf
}

// String returns a short description of the tensor for diagnostics.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%v, op=%v)", t.Shape(), t.op)
}

// accumulate adds g into the tensor's gradient.
func (t *Tensor) accumulate(g *tensor.Matrix) error {
	if t.grad == nil {
		t.grad = g
		return nil
	}
	sum, err := tensor.Add(t.grad, g)
	if err != nil {
		return err
	}
	t.grad = sum
	return nil
}
