package graph

import "sort"

// FromArcs builds a CSR Graph from a node count and an unordered arc list.
// Node ids in arcs must already be dense in [0, numNodes); callers that read
// from sparse external ids (OSM node ids, etc.) are responsible for
// compacting them first.
func FromArcs(numNodes uint32, arcs []Arc) *Graph {
	sorted := make([]Arc, len(arcs))
	copy(sorted, arcs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	numEdges := uint32(len(sorted))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)

	for _, a := range sorted {
		firstOut[a.From+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	for i, a := range sorted {
		head[i] = a.To
		weight[i] = a.Weight
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
	}
}
