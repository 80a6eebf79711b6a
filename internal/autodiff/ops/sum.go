package ops

import "github.com/born-ml/dunder/internal/tensor"

// sumForward reduces a matrix to a 1×1 matrix holding the sum of its elements.
//
// Backward pass:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// Each input element contributes 1.0 to the output, so the single output
// gradient value is broadcast back to every position.
func sumForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return tensor.Scalar(tensor.SumAll(in[0])), nil
}

func sumBackward(in []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	return []*tensor.Matrix{tensor.Full(in[0].Shape(), grad.At(0, 0))}
}
