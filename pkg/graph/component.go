package graph

// UnionFind tracks weak connectivity over the dense node ids of one CSR
// graph. Merging is by component size, so the representative of a merged
// set is always the root of its bigger half.
type UnionFind struct {
	comp []uint32 // comp[v] is v's parent; a root points at itself
	size []uint32 // size[r] is the component size, valid only at roots
}

// NewUnionFind creates a UnionFind with n singleton components.
func NewUnionFind(n uint32) *UnionFind {
	comp := make([]uint32, n)
	size := make([]uint32, n)
	for v := range comp {
		comp[v] = uint32(v)
		size[v] = 1
	}
	return &UnionFind{comp: comp, size: size}
}

// Find returns the root of x's component and compresses the walked chain
// so repeated lookups over the same region stay near-constant.
func (uf *UnionFind) Find(x uint32) uint32 {
	root := x
	for uf.comp[root] != root {
		root = uf.comp[root]
	}
	for uf.comp[x] != root {
		uf.comp[x], x = root, uf.comp[x]
	}
	return root
}

// Union merges the components of x and y, smaller into larger. Returns
// false when they were already connected.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.size[rx] < uf.size[ry] {
		rx, ry = ry, rx
	}
	uf.comp[ry] = rx
	uf.size[rx] += uf.size[ry]
	return true
}

// LargestComponent returns the node ids of the largest weakly connected
// component, in ascending order. Arc direction is ignored: a raw road
// extract is full of one-way fragments that belong to the same drivable
// region, and the contraction pipeline wants the whole region.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}

	best := uf.Find(0)
	for v := uint32(1); v < g.NumNodes; v++ {
		if r := uf.Find(v); uf.size[r] > uf.size[best] {
			best = r
		}
	}

	nodes := make([]uint32, 0, uf.size[best])
	for v := uint32(0); v < g.NumNodes; v++ {
		if uf.Find(v) == best {
			nodes = append(nodes, v)
		}
	}
	return nodes
}

// FilterToComponent reindexes g down to the given nodes, keeping only arcs
// with both endpoints inside the set. The new dense ids follow the order
// of nodes, so a caller holding a parallel per-node slice can reindex it
// the same way.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	arcs := make([]Arc, 0, g.NumEdges)
	for _, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			if newV, ok := oldToNew[g.Head[e]]; ok {
				arcs = append(arcs, Arc{From: oldToNew[oldU], To: newV, Weight: g.Weight[e]})
			}
		}
	}

	return FromArcs(uint32(len(nodes)), arcs)
}
