// Package graph defines the compressed sparse row representation of the
// input road/transport graph that contraction hierarchies preprocessing
// consumes.
package graph

// Graph is a directed graph in CSR (Compressed Sparse Row) format.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []float64 // len: NumEdges; non-negative finite edge weight
}

// Arc is a single directed edge, as read from an external source before CSR
// construction.
type Arc struct {
	From, To uint32
	Weight   float64
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}
