package ch

import "math"

// infDist stands in for "unreached" in scratch distance arrays. It is
// ordinary IEEE 754 +Inf, so additions and comparisons against it need no
// special-casing.
var infDist = math.Inf(1)

// witnessHeapItem is an entry in the witness search min-heap.
type witnessHeapItem struct {
	node uint32
	dist float64
}

// witnessHeap is a concrete-typed binary min-heap for witness search.
type witnessHeap struct {
	items []witnessHeapItem
}

func (h *witnessHeap) Len() int { return len(h.items) }

func (h *witnessHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, witnessHeapItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *witnessHeap) Pop() witnessHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// siftUp uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

// siftDown uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *witnessHeap) Reset() {
	h.items = h.items[:0]
}

// witnessState holds reusable state for repeated witness searches during a
// single contraction run. Avoids per-call allocation by using a
// touched-list reset pattern instead of resetting dist over all of N.
type witnessState struct {
	dist    []float64
	touched []uint32
	heap    witnessHeap
}

func newWitnessState(numNodes uint32) *witnessState {
	dist := make([]float64, numNodes)
	for i := range dist {
		dist[i] = infDist
	}
	return &witnessState{
		dist: dist,
		heap: witnessHeap{items: make([]witnessHeapItem, 0, 256)},
	}
}

func (ws *witnessState) reset() {
	for _, n := range ws.touched {
		ws.dist[n] = infDist
	}
	ws.touched = ws.touched[:0]
	ws.heap.Reset()
}

// witnessSearch reports whether a path from source to target exists in the
// overlay's current out-adjacency, not passing through forbidden or any
// already-contracted node, of length at most maxDist. It decides whether a
// shortcut around forbidden is actually needed to preserve shortest-path
// distances, so it has no settle or hop cap: undercounting a witness would
// skip a necessary shortcut and silently corrupt query distances.
func witnessSearch(store *overlayStore, contracted []bool, source, target, forbidden uint32, maxDist float64, ws *witnessState) bool {
	ws.reset()

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0)

	for ws.heap.Len() > 0 {
		cur := ws.heap.Pop()
		if cur.dist > ws.dist[cur.node] {
			continue
		}
		if cur.dist > maxDist {
			return false
		}
		if cur.node == target {
			return true
		}
		for _, e := range store.out[cur.node] {
			if e.to == forbidden || contracted[e.to] {
				continue
			}
			nd := cur.dist + e.weight
			if nd < ws.dist[e.to] {
				if ws.dist[e.to] == infDist {
					ws.touched = append(ws.touched, e.to)
				}
				ws.dist[e.to] = nd
				ws.heap.Push(e.to, nd)
			}
		}
	}
	return false
}

// boundedDijkstraFrom runs a single Dijkstra from source over the overlay's
// current out-adjacency, excluding forbidden and already-contracted nodes,
// stopping once the frontier exceeds maxDist. Afterwards ws.dist holds the
// best known distance to every node reached within maxDist (infDist
// otherwise). Used by the top-down contractor to answer several candidate
// shortcut distances from one source with a single search.
func boundedDijkstraFrom(store *overlayStore, contracted []bool, source, forbidden uint32, maxDist float64, ws *witnessState) {
	ws.reset()

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0)

	for ws.heap.Len() > 0 {
		cur := ws.heap.Pop()
		if cur.dist > ws.dist[cur.node] {
			continue
		}
		if cur.dist > maxDist {
			return
		}
		for _, e := range store.out[cur.node] {
			if e.to == forbidden || (contracted[e.to] && e.to != source) {
				continue
			}
			nd := cur.dist + e.weight
			if nd < ws.dist[e.to] {
				if ws.dist[e.to] == infDist {
					ws.touched = append(ws.touched, e.to)
				}
				ws.dist[e.to] = nd
				ws.heap.Push(e.to, nd)
			}
		}
	}
}
