package autodiff

import (
	"fmt"

	"github.com/born-ml/dunder/internal/autodiff/ops"
	"github.com/born-ml/dunder/internal/tensor"
)

// apply runs the forward rule of kind and records the operands as parents.
// Nothing is allocated for the result when the forward rule fails.
func apply(kind ops.Kind, operands ...*Tensor) (*Tensor, error) {
	data := make([]*tensor.Matrix, len(operands))
	for i, t := range operands {
		if t == nil {
			return nil, fmt.Errorf("%v: operand %d is nil", kind, i)
		}
		data[i] = t.data
	}

	out, err := ops.Forward(kind, data...)
	if err != nil {
		return nil, err
	}

	return &Tensor{
		data:    out,
		op:      kind,
		parents: operands,
	}, nil
}

// Add returns the element-wise sum a + b.
// The shapes must be equal, otherwise tensor.ErrShapeMismatch is returned.
func Add(a, b *Tensor) (*Tensor, error) {
	return apply(ops.Add, a, b)
}

// Sub returns the element-wise difference a - b.
// The shapes must be equal, otherwise tensor.ErrShapeMismatch is returned.
func Sub(a, b *Tensor) (*Tensor, error) {
	return apply(ops.Sub, a, b)
}

// MatMul returns the matrix product a @ b.
// a's column count must equal b's row count, otherwise
// tensor.ErrDimensionMismatch is returned.
func MatMul(a, b *Tensor) (*Tensor, error) {
	return apply(ops.MatMul, a, b)
}

// Mul is the product behind the * operator. When exactly one operand is 1×1
// it scales the other operand; otherwise it is MatMul.
func Mul(a, b *Tensor) (*Tensor, error) {
	if a == nil || b == nil {
		return apply(ops.MatMul, a, b)
	}

	aScalar, bScalar := a.Shape().IsScalar(), b.Shape().IsScalar()
	switch {
	case aScalar && !bScalar:
		return apply(ops.ScaleLeft, a, b)
	case bScalar && !aScalar:
		return apply(ops.ScaleRight, a, b)
	default:
		return apply(ops.MatMul, a, b)
	}
}

// Sum reduces a to a 1×1 tensor holding the sum of its elements.
func Sum(a *Tensor) (*Tensor, error) {
	return apply(ops.Sum, a)
}

// Add returns t + other and panics on a shape mismatch.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return must(Add(t, other))
}

// Sub returns t - other and panics on a shape mismatch.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return must(Sub(t, other))
}

// MatMul returns t @ other and panics on a dimension mismatch.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	return must(MatMul(t, other))
}

// Mul returns t * other (see the package function Mul) and panics on a
// dimension mismatch.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return must(Mul(t, other))
}

// Sum returns the 1×1 sum of all elements of t.
func (t *Tensor) Sum() *Tensor {
	return must(Sum(t))
}

func must(t *Tensor, err error) *Tensor {
	if err != nil {
		panic(err)
	}
	return t
}
