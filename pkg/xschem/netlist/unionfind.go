package netlist

// unionFind tracks wire group membership. Wires are identified by their
// index in the drawing, so slices beat maps here.
type unionFind struct {
	parent []int
	rank   []int
}

// newUnionFind creates n singleton groups.
func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the root of x's group.
// Uses path compression for O(α(n)) amortized time complexity.
func (uf *unionFind) find(x int) int {
	// Find root
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	// Path compression: make all nodes on the path point directly to root
	current := x
	for current != root {
		next := uf.parent[current]
		uf.parent[current] = root
		current = next
	}

	return root
}

// union merges the groups containing a and b.
func (uf *unionFind) union(a, b int) {
	rootA := uf.find(a)
	rootB := uf.find(b)

	if rootA == rootB {
		return // Already in the same group
	}

	// Union by rank
	if uf.rank[rootA] < uf.rank[rootB] {
		uf.parent[rootA] = rootB
	} else if uf.rank[rootA] > uf.rank[rootB] {
		uf.parent[rootB] = rootA
	} else {
		uf.parent[rootB] = rootA
		uf.rank[rootA]++
	}
}
