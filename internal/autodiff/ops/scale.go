package ops

import (
	"fmt"

	"github.com/born-ml/dunder/internal/tensor"
)

// Scaling multiplies a matrix by a 1×1 operand, which is how a literal in
// `2 * x` or `x * 2` reaches the runtime.
//
// Backward pass, for out = s * m:
//   - grad_m = s * outputGrad
//   - grad_s = sum(outputGrad ∘ m), a 1×1 matrix

func scaleLeftForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return scale(in[0], in[1])
}

func scaleRightForward(in []*tensor.Matrix) (*tensor.Matrix, error) {
	return scale(in[1], in[0])
}

func scale(s, m *tensor.Matrix) (*tensor.Matrix, error) {
	if !s.Shape().IsScalar() {
		return nil, fmt.Errorf("scale: %w: scalar operand is %v", tensor.ErrShapeMismatch, s.Shape())
	}
	return tensor.Scale(s.At(0, 0), m), nil
}

// scaleCheck returns a check for the scalar operand at index scalar.
func scaleCheck(scalar int) func([]*tensor.Matrix, tensor.Shape) error {
	return func(in []*tensor.Matrix, out tensor.Shape) error {
		if !in[scalar].Shape().IsScalar() {
			return fmt.Errorf("scale backward: %w: scalar operand is %v", tensor.ErrShapeMismatch, in[scalar].Shape())
		}
		if m := in[1-scalar].Shape(); !m.Equal(out) {
			return fmt.Errorf("scale backward: %w: operand %v vs output %v", tensor.ErrShapeMismatch, m, out)
		}
		return nil
	}
}

func scaleLeftBackward(in []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	gradM, gradS := scaleBackward(in[0], in[1], grad)
	return []*tensor.Matrix{gradS, gradM}
}

func scaleRightBackward(in []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix {
	gradM, gradS := scaleBackward(in[1], in[0], grad)
	return []*tensor.Matrix{gradM, gradS}
}

func scaleBackward(s, m, grad *tensor.Matrix) (gradM, gradS *tensor.Matrix) {
	gradM = tensor.Scale(s.At(0, 0), grad)
	gradS = tensor.Scalar(tensor.SumAll(must(tensor.MulElem(grad, m))))
	return gradM, gradS
}
