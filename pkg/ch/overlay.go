package ch

import "chgraph/pkg/graph"

// overlayEdge is one directed arc in the working overlay a contractor
// mutates as it runs: an original input arc or a shortcut introduced to
// preserve shortest-path distances around a contracted node.
type overlayEdge struct {
	to     uint32
	weight float64
	middle int64 // contracted node the shortcut bypasses, or -1 for an original arc
}

// overlayStore holds the live, mutable adjacency both contractors work
// against: out[u] and in[v] are kept in sync so a node's active neighbors
// can be enumerated from either side without a linear scan of all arcs.
type overlayStore struct {
	out [][]overlayEdge
	in  [][]overlayEdge
}

func newOverlayStore(g *graph.Graph) *overlayStore {
	s := &overlayStore{
		out: make([][]overlayEdge, g.NumNodes),
		in:  make([][]overlayEdge, g.NumNodes),
	}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			w := g.Weight[e]
			// Multi-edges between the same pair are collapsed to their
			// minimum weight as they enter the overlay; self-loops are
			// skipped the same way addOrDecrease would no-op them.
			s.addOrDecrease(u, v, w, -1)
		}
	}
	return s
}

// addOrDecrease inserts a shortcut from->to via middle with weight w, or
// lowers the weight of a matching existing arc if w improves on it. It
// never discards an arc that is still cheaper than w. A self-loop or an
// out-of-range endpoint is a no-op.
func (s *overlayStore) addOrDecrease(from, to uint32, w float64, middle int64) {
	if from == to || int(from) >= len(s.out) || int(to) >= len(s.out) {
		return
	}
	found := false
	for i := range s.out[from] {
		if s.out[from][i].to == to {
			found = true
			if w < s.out[from][i].weight {
				s.out[from][i].weight = w
				s.out[from][i].middle = middle
			}
			break
		}
	}
	if !found {
		s.out[from] = append(s.out[from], overlayEdge{to: to, weight: w, middle: middle})
	}

	found = false
	for i := range s.in[to] {
		if s.in[to][i].to == from {
			found = true
			if w < s.in[to][i].weight {
				s.in[to][i].weight = w
				s.in[to][i].middle = middle
			}
			break
		}
	}
	if !found {
		s.in[to] = append(s.in[to], overlayEdge{to: from, weight: w, middle: middle})
	}
}
