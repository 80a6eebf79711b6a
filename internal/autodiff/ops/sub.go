package ops

import "github.com/born-ml/dunder/internal/tensor"

// subForward computes a - b.
//
// Backward pass:
//   - d(a-b)/da = 1, so grad_a = outputGrad
//   - d(a-b)/db = -1, so grad_b = -outputGrad
func subForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return tensor.Sub(in[0], in[1])
}

func subBackward(_ []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	return []*tensor.Matrix{grad, tensor.Neg(grad)}
}
