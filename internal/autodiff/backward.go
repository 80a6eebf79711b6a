package autodiff

import (
	"fmt"

	"github.com/born-ml/dunder/internal/autodiff/ops"
	"github.com/born-ml/dunder/internal/tensor"
)

// Backward computes the gradient of t with respect to every tensor it was
// computed from.
//
// Algorithm:
//  1. Collect the reachable graph into an arena and order it topologically
//  2. Check every recorded backward rule against its operand shapes
//  3. Clear the gradients of every tensor in the graph
//  4. Seed t's gradient with ones of t's shape
//  5. Walk the order from t towards the leaves, dispatching each tensor's
//     operation to its backward rule and accumulating into its parents
//
// Each call starts from cleared gradients, so calling Backward twice yields
// the same gradients rather than their sum. A tensor shared by two separate
// graphs keeps only the gradients of the most recent call.
//
// If a backward rule is ill-formed for its shapes (MatMul of non-square
// operands, see ops.MatMul), Backward returns an error wrapping
// tensor.ErrDimensionMismatch and no gradient is modified.
func (t *Tensor) Backward() error {
	g := collect(t)
	order := g.topoOrder()

	for _, id := range order {
		n := g.nodes[id]
		if n.IsLeaf() {
			continue
		}
		if err := ops.Check(n.op, n.Shape(), operands(n)...); err != nil {
			return fmt.Errorf("backward: %v: %w", n, err)
		}
	}

	for _, n := range g.nodes {
		n.grad = nil
	}
	t.grad = tensor.Ones(t.Shape())

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := g.nodes[id]
		if n.IsLeaf() || n.grad == nil {
			continue
		}

		grads, err := ops.Backward(n.op, n.grad, operands(n)...)
		if err != nil {
			return fmt.Errorf("backward: %v: %w", n, err)
		}
		for j, pid := range g.parents[id] {
			if err := g.nodes[pid].accumulate(grads[j]); err != nil {
				return fmt.Errorf("backward: %v: operand %d: %w", n, j, err)
			}
		}
	}
	return nil
}

// Graph returns every tensor reachable from t, each exactly once, ordered so
// that a tensor appears after all of its parents. t is last.
func (t *Tensor) Graph() []*Tensor {
	g := collect(t)
	order := g.topoOrder()
	nodes := make([]*Tensor, len(order))
	for i, id := range order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

func operands(t *Tensor) []*tensor.Matrix {
	in := make([]*tensor.Matrix, len(t.parents))
	for i, p := range t.parents {
		in[i] = p.data
	}
	return in
}
