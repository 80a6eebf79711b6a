// Package ops defines the differentiable operations recorded in a computation graph.
//
// Each operation is identified by a Kind tag. A tensor stores only its Kind and
// its ordered operands; the forward and backward rules are pure functions of
// the operand data and are selected by dispatching on the Kind.
//
// Supported operations:
//   - Add: element-wise addition (grad flows unchanged to both operands)
//   - Sub: element-wise subtraction (grad to a, -grad to b)
//   - MatMul: matrix product (grad_a = grad @ b, grad_b = a @ grad)
//   - ScaleLeft, ScaleRight: product with a 1×1 operand
//   - Sum: reduction of all elements to a 1×1 result
package ops

import (
	"fmt"

	"github.com/born-ml/dunder/internal/tensor"
)

// Kind tags the operation that produced a tensor.
type Kind uint8

// Operation kinds.
const (
	Leaf       Kind = iota // created directly from data
	Add                    // a + b
	Sub                    // a - b
	MatMul                 // a @ b
	ScaleLeft              // s * b, s is 1×1
	ScaleRight             // a * s, s is 1×1
	Sum                    // sum(a)
)

// String returns the operation name.
func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Add:
		return "add"
	case Sub:
		return "sub"
	case MatMul:
		return "matmul"
	case ScaleLeft, ScaleRight:
		return "scale"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// rule holds the pure forward and backward functions of one Kind.
type rule struct {
	arity int

	// forward computes the output from the operands.
	forward func(in []*tensor.Matrix) (*tensor.Matrix, error)

	// check verifies that the backward rule is well formed for these operands.
	check func(in []*tensor.Matrix, out tensor.Shape) error

	// backward returns one gradient contribution per operand.
	backward func(in []*tensor.Matrix, grad *tensor.Matrix) []*tensor.Matrix
}

var rules = map[Kind]rule{
	Add:        {arity: 2, forward: addForward, check: sameShapeCheck, backward: addBackward},
	Sub:        {arity: 2, forward: subForward, check: sameShapeCheck, backward: subBackward},
	MatMul:     {arity: 2, forward: matMulForward, check: matMulCheck, backward: matMulBackward},
	ScaleLeft:  {arity: 2, forward: scaleLeftForward, check: scaleCheck(0), backward: scaleLeftBackward},
	ScaleRight: {arity: 2, forward: scaleRightForward, check: scaleCheck(1), backward: scaleRightBackward},
	Sum:        {arity: 1, forward: sumForward, check: noCheck, backward: sumBackward},
}

func lookup(k Kind, in []*tensor.Matrix) (rule, error) {
	r, ok := rules[k]
	if !ok {
		return rule{}, fmt.Errorf("ops: %v has no rule", k)
	}
	if len(in) != r.arity {
		return rule{}, fmt.Errorf("ops: %v takes %d operands, got %d", k, r.arity, len(in))
	}
	return r, nil
}

// Arity returns the number of operands of k, or 0 for Leaf.
func Arity(k Kind) int {
	return rules[k].arity
}

// Forward computes the result of operation k applied to the operands.
// Shape violations are reported as tensor.ErrShapeMismatch or
// tensor.ErrDimensionMismatch.
func Forward(k Kind, in ...*tensor.Matrix) (*tensor.Matrix, error) {
	r, err := lookup(k, in)
	if err != nil {
		return nil, err
	}
	return r.forward(in)
}

// Check verifies that the backward rule of k can be applied to operands in
// producing an output of shape out. It is called for a whole graph before any
// gradient is written.
func Check(k Kind, out tensor.Shape, in ...*tensor.Matrix) error {
	r, err := lookup(k, in)
	if err != nil {
		return err
	}
	return r.check(in, out)
}

// Backward computes the gradient contribution of operation k to each operand,
// given the gradient of its output. Callers must Check the operands first.
func Backward(k Kind, grad *tensor.Matrix, in ...*tensor.Matrix) ([]*tensor.Matrix, error) {
	r, err := lookup(k, in)
	if err != nil {
		return nil, err
	}
	return r.backward(in, grad), nil
}

func noCheck([]*tensor.Matrix, tensor.Shape) error {
	return nil
}

func sameShapeCheck(in []*tensor.Matrix, out tensor.Shape) error {
	for i, m := range in {
		if !m.Shape().Equal(out) {
			return fmt.Errorf("operand %d: %w: %v vs output %v", i, tensor.ErrShapeMismatch, m.Shape(), out)
		}
	}
	return nil
}

// must unwraps a result whose shapes were verified by Check.
func must(m *tensor.Matrix, err error) *tensor.Matrix {
	if err != nil {
		panic(err)
	}
	return m
}
