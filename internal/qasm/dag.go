package qasm

import "sort"

// DAGNode is one operation of a circuit in its dependency graph. An
// operation depends on the most recent earlier operations that touch the
// same qubits or classical bits.
type DAGNode struct {
	Index        int   // position in Circuit.Ops
	Step         int   // earliest layer the operation can run in
	Dependencies []int // indices of operations that must run first
}

// CircuitDAG is the dependency graph of a parsed circuit.
type CircuitDAG struct {
	Nodes []DAGNode
	depth int
}

// BuildDAG schedules every operation as early as its dependencies allow.
// A barrier aligns its qubits to a common step without occupying one.
func BuildDAG(c *Circuit) *CircuitDAG {
	nq, nc := c.NumQubits(), c.NumCbits()
	frontier := make([]int, nq+nc) // next free step per resource
	last := make([]int, nq+nc)     // last operation per resource
	for i := range last {
		last[i] = -1
	}

	dag := &CircuitDAG{Nodes: make([]DAGNode, len(c.Ops))}
	for i, op := range c.Ops {
		res := resources(c, op)

		step := 0
		var deps []int
		seen := make(map[int]bool)
		for _, r := range res {
			step = max(step, frontier[r])
			if d := last[r]; d >= 0 && !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
		sort.Ints(deps)

		next := step + 1
		if op.Kind == OpBarrier {
			next = step
		}
		for _, r := range res {
			frontier[r] = next
			last[r] = i
		}
		dag.depth = max(dag.depth, next)
		dag.Nodes[i] = DAGNode{Index: i, Step: step, Dependencies: deps}
	}
	return dag
}

// resources lists the qubits (0..n-1) and classical bits (n..) op touches.
func resources(c *Circuit, op Operation) []int {
	nq := c.NumQubits()
	var res []int
	if op.Kind == OpBarrier && len(op.Qubits) == 0 {
		for q := range nq {
			res = append(res, q)
		}
	}
	res = append(res, op.Qubits...)
	if op.Kind == OpMeasure {
		res = append(res, nq+op.Cbit)
	}
	if op.Cond != nil {
		if op.Cond.Bit >= 0 {
			res = append(res, nq+op.Cond.Bit)
		} else {
			for b := range c.NumCbits() {
				res = append(res, nq+b)
			}
		}
	}
	return res
}

// Depth is the number of layers, not counting barriers.
func (dag *CircuitDAG) Depth() int { return dag.depth }

// Roots returns the operations with no dependencies.
func (dag *CircuitDAG) Roots() []int {
	var roots []int
	for _, n := range dag.Nodes {
		if len(n.Dependencies) == 0 {
			roots = append(roots, n.Index)
		}
	}
	return roots
}

// Layers groups operation indices by step. Barriers are left out.
func (dag *CircuitDAG) Layers(c *Circuit) [][]int {
	layers := make([][]int, dag.depth)
	for _, n := range dag.Nodes {
		if c.Ops[n.Index].Kind == OpBarrier {
			continue
		}
		layers[n.Step] = append(layers[n.Step], n.Index)
	}
	return layers
}

// TopologicalSort returns operation indices ordered by step, then by source
// order. Every operation appears after its dependencies.
func (dag *CircuitDAG) TopologicalSort() []int {
	order := make([]int, len(dag.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dag.Nodes[order[a]].Step < dag.Nodes[order[b]].Step
	})
	return order
}
