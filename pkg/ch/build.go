package ch

// buildPreprocessedGraph classifies every arc remaining in store by rank
// into the forward upward graph (rank[from] < rank[to]) and the backward
// upward graph (rank[from] > rank[to], stored reversed so its bucket is
// also the lower-ranked endpoint). Both overlays therefore only ever walk
// from lower to higher rank, which is what lets forward and backward
// Dijkstra searches meet at a peak node.
func buildPreprocessedGraph(n uint32, rank []uint32, store *overlayStore) *PreprocessedGraph {
	type rawArc struct {
		from, to uint32
		weight   float64
	}

	var fwd, bwd []rawArc
	for u := uint32(0); u < n; u++ {
		for _, e := range store.out[u] {
			switch {
			case rank[u] < rank[e.to]:
				fwd = append(fwd, rawArc{from: u, to: e.to, weight: e.weight})
			case rank[u] > rank[e.to]:
				bwd = append(bwd, rawArc{from: e.to, to: u, weight: e.weight})
			}
		}
	}

	buildCSR := func(arcs []rawArc) (firstOut, head []uint32, weight []float64) {
		numEdges := uint32(len(arcs))
		firstOut = make([]uint32, n+1)
		head = make([]uint32, numEdges)
		weight = make([]float64, numEdges)

		for _, a := range arcs {
			firstOut[a.from+1]++
		}
		for i := uint32(1); i <= n; i++ {
			firstOut[i] += firstOut[i-1]
		}

		pos := make([]uint32, n)
		copy(pos, firstOut[:n])
		for _, a := range arcs {
			idx := pos[a.from]
			head[idx] = a.to
			weight[idx] = a.weight
			pos[a.from]++
		}
		return
	}

	fwdFirstOut, fwdHead, fwdWeight := buildCSR(fwd)
	bwdFirstOut, bwdHead, bwdWeight := buildCSR(bwd)

	pg := &PreprocessedGraph{
		NumNodes:    n,
		Rank:        rank,
		FwdFirstOut: fwdFirstOut,
		FwdHead:     fwdHead,
		FwdWeight:   fwdWeight,
		BwdFirstOut: bwdFirstOut,
		BwdHead:     bwdHead,
		BwdWeight:   bwdWeight,
	}
	if debugChecks {
		assertPreprocessedInvariants(pg)
	}
	return pg
}
