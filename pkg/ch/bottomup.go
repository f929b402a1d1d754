package ch

import (
	"container/heap"
	"log"

	"chgraph/pkg/graph"
)

// PreprocessBottomUp builds a PreprocessedGraph using online node
// contraction: nodes are contracted in an order chosen adaptively, one at a
// time, from a priority queue keyed by the current importance of each
// remaining node, recomputed lazily on pop.
func PreprocessBottomUp(g *graph.Graph) *PreprocessedGraph {
	n := g.NumNodes
	store := newOverlayStore(g)
	contracted := make([]bool, n)
	rank := make([]uint32, n)
	ws := newWitnessState(n)

	pq := make(importanceQueue, n)
	for i := uint32(0); i < n; i++ {
		pq[i] = &importanceEntry{node: i, importance: importance(store, contracted, i), index: int(i)}
	}
	heap.Init(&pq)

	log.Printf("ch: contracting %d nodes bottom-up", n)

	var totalShortcuts int
	order := uint32(0)
	logInterval := uint32(50000)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*importanceEntry)
		v := entry.node
		if contracted[v] {
			continue
		}

		newImp := importance(store, contracted, v)
		if newImp > entry.importance {
			entry.importance = newImp
			heap.Push(&pq, entry)
			continue
		}

		var incoming, outgoing []overlayEdge
		for _, e := range store.in[v] {
			if !contracted[e.to] {
				incoming = append(incoming, e)
			}
		}
		for _, e := range store.out[v] {
			if !contracted[e.to] {
				outgoing = append(outgoing, e)
			}
		}

		for _, in := range incoming {
			for _, out := range outgoing {
				if in.to == out.to {
					continue
				}
				scWeight := in.weight + out.weight
				if !witnessSearch(store, contracted, in.to, out.to, v, scWeight, ws) {
					store.addOrDecrease(in.to, out.to, scWeight, int64(v))
					totalShortcuts++
				}
			}
		}

		contracted[v] = true
		rank[v] = order
		order++

		for _, e := range incoming {
			if !contracted[e.to] {
				heap.Push(&pq, &importanceEntry{node: e.to, importance: importance(store, contracted, e.to)})
			}
		}
		for _, e := range outgoing {
			if !contracted[e.to] {
				heap.Push(&pq, &importanceEntry{node: e.to, importance: importance(store, contracted, e.to)})
			}
		}

		remaining := n - order
		switch {
		case remaining < 1000:
			logInterval = 100
		case remaining < 10000:
			logInterval = 1000
		case remaining < 100000:
			logInterval = 10000
		default:
			logInterval = 50000
		}
		if order%logInterval == 0 {
			log.Printf("ch: contracted %d/%d nodes, %d shortcuts so far", order, n, totalShortcuts)
		}
	}

	log.Printf("ch: contraction complete, %d shortcuts created", totalShortcuts)

	return buildPreprocessedGraph(n, rank, store)
}
