package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dunder/internal/autodiff"
	"github.com/born-ml/dunder/internal/autodiff/ops"
	"github.com/born-ml/dunder/internal/tensor"
)

func leaf(t *testing.T, rows [][]float64) *autodiff.Tensor {
	t.Helper()
	x, err := autodiff.New(rows)
	require.NoError(t, err)
	return x
}

func gradRows(t *testing.T, x *autodiff.Tensor) [][]float64 {
	t.Helper()
	require.NotNil(t, x.Grad(), "expected a gradient for %v", x)
	return x.Grad().Rows()
}

// TestNew_Validation tests leaf construction from rows.
func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
	}{
		{"nil", nil},
		{"empty row", [][]float64{{}}},
		{"ragged", [][]float64{{1, 2}, {3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := autodiff.New(tt.rows)
			assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
			assert.Nil(t, x)
		})
	}

	x := leaf(t, [][]float64{{1, 2, 3}})
	assert.True(t, x.IsLeaf())
	assert.Equal(t, ops.Leaf, x.Op())
	assert.Empty(t, x.Parents())
	assert.Nil(t, x.Grad())
	assert.Equal(t, tensor.Shape{Rows: 1, Cols: 3}, x.Shape())
}

// TestNew_CopiesInput tests that later changes to the input rows are not observed.
func TestNew_CopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	x := leaf(t, rows)
	rows[0][0] = 100

	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, x.Rows())

	out := x.Rows()
	out[1][1] = -1
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, x.Rows())
}

// TestElementWise tests Add and Sub forward values.
func TestElementWise(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	b := leaf(t, [][]float64{{5, 6}, {7, 8}})

	sum, err := autodiff.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{6, 8}, {10, 12}}, sum.Rows())
	assert.Equal(t, ops.Add, sum.Op())
	assert.Equal(t, []*autodiff.Tensor{a, b}, sum.Parents())

	diff, err := autodiff.Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-4, -4}, {-4, -4}}, diff.Rows())
	assert.Equal(t, ops.Sub, diff.Op())
}

// TestShapeErrors tests that mismatched operands fail without a result.
func TestShapeErrors(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	row := leaf(t, [][]float64{{1, 2, 3}})

	tests := []struct {
		name string
		fn   func(a, b *autodiff.Tensor) (*autodiff.Tensor, error)
		want error
	}{
		{"add", autodiff.Add, tensor.ErrShapeMismatch},
		{"sub", autodiff.Sub, tensor.ErrShapeMismatch},
		{"matmul", autodiff.MatMul, tensor.ErrDimensionMismatch},
		{"mul", autodiff.Mul, tensor.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.fn(a, row)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)
		})
	}
}

// TestMethods_Panic tests that the chaining methods panic with the wrapped error.
func TestMethods_Panic(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	row := leaf(t, [][]float64{{1, 2, 3}})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	}()
	a.Add(row)
}

// TestMatMul_DimensionRule tests that MatMul fails iff a.Cols != b.Rows.
func TestMatMul_DimensionRule(t *testing.T) {
	for ar := 1; ar <= 3; ar++ {
		for ac := 1; ac <= 3; ac++ {
			for br := 1; br <= 3; br++ {
				a := autodiff.FromMatrix(tensor.Ones(tensor.Shape{Rows: ar, Cols: ac}))
				b := autodiff.FromMatrix(tensor.Ones(tensor.Shape{Rows: br, Cols: 2}))

				out, err := autodiff.MatMul(a, b)
				if ac != br {
					assert.ErrorIs(t, err, tensor.ErrDimensionMismatch, "%dx%d @ %dx2", ar, ac, br)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, tensor.Shape{Rows: ar, Cols: 2}, out.Shape())
				assert.Equal(t, float64(ac), out.Data().At(0, 0))
			}
		}
	}
}

// TestMul_Scalar tests the 1×1 special case of the * operator method.
func TestMul_Scalar(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	two := autodiff.Scalar(2)

	right := a.Mul(two)
	assert.Equal(t, [][]float64{{2, 4}, {6, 8}}, right.Rows())
	assert.Equal(t, ops.ScaleRight, right.Op())

	left := two.Mul(a)
	assert.Equal(t, [][]float64{{2, 4}, {6, 8}}, left.Rows())
	assert.Equal(t, ops.ScaleLeft, left.Op())

	both := two.Mul(autodiff.Scalar(3))
	assert.Equal(t, [][]float64{{6}}, both.Rows())
	assert.Equal(t, ops.MatMul, both.Op())
}

// TestEndToEnd_MatMul tests the reference matrix-product scenario.
func TestEndToEnd_MatMul(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	b := leaf(t, [][]float64{{5, 6}, {7, 8}})

	c := a.MatMul(b)
	assert.Equal(t, [][]float64{{19, 22}, {43, 50}}, c.Rows())

	require.NoError(t, c.Backward())
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, gradRows(t, c))
	assert.Equal(t, [][]float64{{12, 14}, {12, 14}}, gradRows(t, a))
	assert.Equal(t, [][]float64{{3, 3}, {7, 7}}, gradRows(t, b))
}

// TestEndToEnd_Sum tests backward through a sum reduction.
func TestEndToEnd_Sum(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})

	s := a.Sum()
	assert.Equal(t, [][]float64{{10}}, s.Rows())

	require.NoError(t, s.Backward())
	assert.Equal(t, [][]float64{{1}}, gradRows(t, s))
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, gradRows(t, a))
}

// TestBackward_Sub tests that the subtrahend receives the negated gradient.
func TestBackward_Sub(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	b := leaf(t, [][]float64{{5, 6}, {7, 8}})

	require.NoError(t, a.Sub(b).Sum().Backward())
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, gradRows(t, a))
	assert.Equal(t, [][]float64{{-1, -1}, {-1, -1}}, gradRows(t, b))
}

// TestBackward_GradientAccumulation tests that an operand used twice accumulates.
func TestBackward_GradientAccumulation(t *testing.T) {
	x := leaf(t, [][]float64{{3}})

	y := x.Add(x)
	require.NoError(t, y.Backward())
	assert.Equal(t, [][]float64{{2}}, gradRows(t, x))
}

// TestBackward_Diamond tests that a shared ancestor runs its rule once, after
// both dependents have contributed.
func TestBackward_Diamond(t *testing.T) {
	x := leaf(t, [][]float64{{1, 2}, {3, 4}})
	y := leaf(t, [][]float64{{5, 6}, {7, 8}})

	a := x.Add(y)     // shared ancestor
	left := a.Add(x)  // a reached through left
	right := a.Sub(y) // and through right
	root := left.Add(right).Sum()

	require.NoError(t, root.Backward())

	// d(root)/da = 2, so a forwards 2 to x and y exactly once.
	assert.Equal(t, [][]float64{{2, 2}, {2, 2}}, gradRows(t, a))
	assert.Equal(t, [][]float64{{3, 3}, {3, 3}}, gradRows(t, x))
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, gradRows(t, y))

	graph := root.Graph()
	assert.Len(t, graph, 7)
	seen := make(map[*autodiff.Tensor]bool)
	for _, n := range graph {
		assert.False(t, seen[n], "%v visited twice", n)
		seen[n] = true
	}
}

// TestGraph_TopologicalOrder tests that parents precede dependents.
func TestGraph_TopologicalOrder(t *testing.T) {
	x := leaf(t, [][]float64{{1}})
	y := leaf(t, [][]float64{{2}})
	z := x.Mul(y).Add(x).Sub(y)

	graph := z.Graph()
	position := make(map[*autodiff.Tensor]int)
	for i, n := range graph {
		position[n] = i
	}

	require.Equal(t, z, graph[len(graph)-1])
	for _, n := range graph {
		for _, p := range n.Parents() {
			assert.Less(t, position[p], position[n], "%v must come before %v", p, n)
		}
	}
}

// TestBackward_DeepChain tests that long graphs do not recurse.
func TestBackward_DeepChain(t *testing.T) {
	x := leaf(t, [][]float64{{1}})
	one := autodiff.Scalar(1)

	y := x
	for i := 0; i < 100000; i++ {
		y = y.Add(one)
	}

	require.NoError(t, y.Backward())
	assert.Equal(t, [][]float64{{100001}}, y.Rows())
	assert.Equal(t, [][]float64{{1}}, gradRows(t, x))
	assert.Equal(t, [][]float64{{100000}}, gradRows(t, one))
}

// TestBackward_ResetsGradients tests that repeated calls do not accumulate.
func TestBackward_ResetsGradients(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	b := leaf(t, [][]float64{{5, 6}, {7, 8}})
	c := a.Add(b).Sum()

	require.NoError(t, c.Backward())
	require.NoError(t, c.Backward())
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, gradRows(t, a))

	a.ZeroGrad()
	assert.Nil(t, a.Grad())
}

// TestBackward_NonSquareMatMul tests that an ill-formed matmul rule is
// reported and leaves gradients untouched.
func TestBackward_NonSquareMatMul(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := leaf(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	c := a.MatMul(b)

	s := leaf(t, [][]float64{{1, 1}, {1, 1}})
	require.NoError(t, s.Add(s).Backward())
	before := s.Grad()

	err := c.Add(s).Backward()
	assert.ErrorIs(t, err, tensor.ErrDimensionMismatch)
	assert.Nil(t, a.Grad())
	assert.Nil(t, b.Grad())
	assert.Nil(t, c.Grad())
	assert.Same(t, before, s.Grad())
}

// TestBackward_Scale tests gradients through the 1×1 special case.
func TestBackward_Scale(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	k := autodiff.Scalar(3)

	require.NoError(t, a.Mul(k).Sum().Backward())
	assert.Equal(t, [][]float64{{3, 3}, {3, 3}}, gradRows(t, a))
	assert.Equal(t, [][]float64{{10}}, gradRows(t, k))
}

// TestBackward_Leaf tests backward on a leaf seeds only its own gradient.
func TestBackward_Leaf(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}})
	require.NoError(t, a.Backward())
	assert.Equal(t, [][]float64{{1, 1}}, gradRows(t, a))
}

// TestString tests the diagnostic description.
func TestString(t *testing.T) {
	a := leaf(t, [][]float64{{1, 2}, {3, 4}})
	assert.Equal(t, "Tensor(2×2, op=leaf)", a.String())
	assert.Equal(t, "Tensor(1×1, op=sum)", a.Sum().String())
}
