package ops

import "github.com/born-ml/dunder/internal/tensor"

// addForward computes a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
func addForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return tensor.Add(in[0], in[1])
}

// addBackward lets the gradient flow unchanged to both inputs.
// Matrices are immutable, so both operands may share the same gradient value.
func addBackward(_ []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	return []*tensor.Matrix{grad, grad}
}
