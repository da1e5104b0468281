package engine

// processingOrder returns the nodes in an order where every node comes after
// all of its inputs, along with the set of nodes that take part in a cycle.
// There are no delay nodes, so a cycle cannot be computed; its members are
// rendered silent, as Web Audio does for cycles without a delay.
//
// Strongly connected components are found with Tarjan's algorithm, which
// emits them in reverse topological order of the edges it follows. Walking
// the input edges instead of the output edges thus yields inputs first.
func processingOrder(nodes []*node) (order []int, cyclic []bool) {
	n := len(nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	cyclic = make([]bool, n)
	order = make([]int, 0, n)
	var stack []int
	counter := 0
	var strongConnect func(v int)
	strongConnect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range nodes[v].inputs {
			if index[w] < 0 {
				strongConnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		start := len(stack) - 1
		for stack[start] != v {
			start--
		}
		component := stack[start:]
		stack = stack[:start]
		for _, w := range component {
			onStack[w] = false
		}
		if len(component) > 1 || nodes[v].hasInput(v) {
			for _, w := range component {
				cyclic[w] = true
			}
		}
		order = append(order, component...)
	}
	for v := range nodes {
		if index[v] < 0 {
			strongConnect(v)
		}
	}
	return order, cyclic
}
