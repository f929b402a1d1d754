package ch

// QueryState is the reusable scratch space for one bidirectional shortest
// path query: two distance arrays, their touched-lists for O(touched)
// reset, and two search heaps. Callers that issue many queries against the
// same PreprocessedGraph should keep one QueryState (or a sync.Pool of
// them) instead of allocating fresh arrays per query.
type QueryState struct {
	distF, distB       []float64
	touchedF, touchedB []uint32
	heapF, heapB       witnessHeap
}

// NewQueryState allocates scratch space sized for g.
func NewQueryState(g *PreprocessedGraph) *QueryState {
	qs := &QueryState{
		distF: make([]float64, g.NumNodes),
		distB: make([]float64, g.NumNodes),
	}
	for i := range qs.distF {
		qs.distF[i] = infDist
		qs.distB[i] = infDist
	}
	return qs
}

func (qs *QueryState) resetTouched() {
	for _, v := range qs.touchedF {
		qs.distF[v] = infDist
	}
	for _, v := range qs.touchedB {
		qs.distB[v] = infDist
	}
	qs.touchedF = qs.touchedF[:0]
	qs.touchedB = qs.touchedB[:0]
	qs.heapF.Reset()
	qs.heapB.Reset()
}

// Query returns the total weight of the shortest path from source to
// target in g, or +Inf if no such path exists (including when source or
// target is out of range, or g is empty).
//
// It runs a bidirectional Dijkstra search that only ever walks upward in
// rank (forward search over g's forward graph, backward search over g's
// backward graph), the two searches meeting at a peak node, with
// stall-on-demand pruning a node's relaxation whenever a cheaper path to it
// is already known through one of its neighbors.
func Query(g *PreprocessedGraph, source, target uint32, qs *QueryState) float64 {
	if g.NumNodes == 0 || source >= g.NumNodes || target >= g.NumNodes {
		return infDist
	}
	if source == target {
		return 0
	}

	qs.resetTouched()

	qs.distF[source] = 0
	qs.touchedF = append(qs.touchedF, source)
	qs.heapF.Push(source, 0)

	qs.distB[target] = 0
	qs.touchedB = append(qs.touchedB, target)
	qs.heapB.Push(target, 0)

	best := infDist

	for qs.heapF.Len() > 0 || qs.heapB.Len() > 0 {
		fCanImprove := qs.heapF.Len() > 0 && qs.heapF.items[0].dist < best
		bCanImprove := qs.heapB.Len() > 0 && qs.heapB.items[0].dist < best
		if !fCanImprove && !bCanImprove {
			break
		}

		advanceForward := fCanImprove && (!bCanImprove || qs.heapF.items[0].dist <= qs.heapB.items[0].dist)

		if advanceForward {
			cur := qs.heapF.Pop()
			if cur.dist > qs.distF[cur.node] {
				continue
			}
			v := cur.node

			if qs.distB[v] < infDist {
				if total := cur.dist + qs.distB[v]; total < best {
					best = total
				}
			}

			if stallForward(g, qs, v, cur.dist) {
				continue
			}

			for e := g.FwdFirstOut[v]; e < g.FwdFirstOut[v+1]; e++ {
				w := g.FwdHead[e]
				nd := cur.dist + g.FwdWeight[e]
				if nd < qs.distF[w] {
					if qs.distF[w] == infDist {
						qs.touchedF = append(qs.touchedF, w)
					}
					qs.distF[w] = nd
					qs.heapF.Push(w, nd)
				}
			}
		} else {
			cur := qs.heapB.Pop()
			if cur.dist > qs.distB[cur.node] {
				continue
			}
			v := cur.node

			if qs.distF[v] < infDist {
				if total := cur.dist + qs.distF[v]; total < best {
					best = total
				}
			}

			if stallBackward(g, qs, v, cur.dist) {
				continue
			}

			for e := g.BwdFirstOut[v]; e < g.BwdFirstOut[v+1]; e++ {
				w := g.BwdHead[e]
				nd := cur.dist + g.BwdWeight[e]
				if nd < qs.distB[w] {
					if qs.distB[w] == infDist {
						qs.touchedB = append(qs.touchedB, w)
					}
					qs.distB[w] = nd
					qs.heapB.Push(w, nd)
				}
			}
		}
	}

	return best
}

// stallForward reports whether v is reachable more cheaply through a
// neighbor already settled in the forward search than the distance v was
// just popped with. Such a neighbor is found by walking g's backward
// graph out of v: since that graph's arcs are stored reversed, bucket v
// holds exactly the higher-ranked nodes u with a direct edge u->v, which
// the forward search itself never traverses (it only walks upward arcs).
func stallForward(g *PreprocessedGraph, qs *QueryState, v uint32, vDist float64) bool {
	for e := g.BwdFirstOut[v]; e < g.BwdFirstOut[v+1]; e++ {
		u := g.BwdHead[e]
		w := g.BwdWeight[e]
		if qs.distF[u] < infDist && qs.distF[u]+w < vDist {
			return true
		}
	}
	return false
}

// stallBackward is stallForward's mirror image for the backward search,
// using g's forward graph out of v to find higher-ranked nodes u with a
// direct edge v->u.
func stallBackward(g *PreprocessedGraph, qs *QueryState, v uint32, vDist float64) bool {
	for e := g.FwdFirstOut[v]; e < g.FwdFirstOut[v+1]; e++ {
		u := g.FwdHead[e]
		w := g.FwdWeight[e]
		if qs.distB[u] < infDist && qs.distB[u]+w < vDist {
			return true
		}
	}
	return false
}
