package autodiff

// graph is an arena holding every tensor reachable from a root.
// Tensors are addressed by their index in nodes; edges are stored as ordered
// lists of parent indices, one entry per operand (repeated operands repeat).
type graph struct {
	nodes   []*Tensor
	parents [][]int
}

// collect builds the arena for root. The root always has index 0.
func collect(root *Tensor) *graph {
	g := &graph{}
	index := make(map[*Tensor]int)

	add := func(t *Tensor) (int, bool) {
		if id, ok := index[t]; ok {
			return id, false
		}
		id := len(g.nodes)
		index[t] = id
		g.nodes = append(g.nodes, t)
		g.parents = append(g.parents, nil)
		return id, true
	}

	add(root)
	pending := []int{0}
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		for _, p := range g.nodes[id].parents {
			pid, fresh := add(p)
			g.parents[id] = append(g.parents[id], pid)
			if fresh {
				pending = append(pending, pid)
			}
		}
	}
	return g
}

// topoOrder returns node indices in post-order: every tensor appears after
// all of its parents, so the root is last. It uses an explicit stack instead
// of recursion, so deep graphs cannot exhaust the goroutine stack.
func (g *graph) topoOrder() []int {
	type frame struct {
		id   int
		next int // index of the next parent to visit
	}

	visited := newBitset(len(g.nodes))
	order := make([]int, 0, len(g.nodes))

	visited.set(0)
	stack := []frame{{id: 0}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(g.parents[top.id]) {
			pid := g.parents[top.id][top.next]
			top.next++
			if !visited.has(pid) {
				visited.set(pid)
				stack = append(stack, frame{id: pid})
			}
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}
	return order
}

// bitset is a fixed-size set of small non-negative integers.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}
