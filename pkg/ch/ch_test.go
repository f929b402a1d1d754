package ch

import (
	"math"
	"math/rand"
	"testing"

	"chgraph/pkg/graph"
)

// plainDijkstra is a brute-force reference used to check CH query results
// against. It never touches the contraction hierarchy.
func plainDijkstra(g *graph.Graph, source, target uint32) float64 {
	if source >= g.NumNodes || target >= g.NumNodes {
		return math.Inf(1)
	}
	if source == target {
		return 0
	}
	dist := make([]float64, g.NumNodes)
	visited := make([]bool, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0

	for {
		u := uint32(math.MaxUint32)
		best := math.Inf(1)
		for v := uint32(0); v < g.NumNodes; v++ {
			if !visited[v] && dist[v] < best {
				best = dist[v]
				u = v
			}
		}
		if u == math.MaxUint32 {
			break
		}
		if u == target {
			break
		}
		visited[u] = true
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			nd := dist[u] + g.Weight[e]
			if nd < dist[v] {
				dist[v] = nd
			}
		}
	}
	return dist[target]
}

func buildGraph(t *testing.T, n uint32, arcs []graph.Arc) *graph.Graph {
	t.Helper()
	return graph.FromArcs(n, arcs)
}

func checkCSRInvariants(t *testing.T, pg *PreprocessedGraph) {
	t.Helper()
	n := pg.NumNodes

	seen := make([]bool, n)
	for _, r := range pg.Rank {
		if r >= n {
			t.Fatalf("rank %d out of range for N=%d", r, n)
		}
		if seen[r] {
			t.Fatalf("rank %d assigned twice, not a permutation", r)
		}
		seen[r] = true
	}

	checkCSR := func(name string, firstOut, head []uint32) {
		if uint32(len(firstOut)) != n+1 {
			t.Fatalf("%s: FirstOut length %d != N+1 (%d)", name, len(firstOut), n+1)
		}
		if firstOut[0] != 0 {
			t.Fatalf("%s: FirstOut[0] != 0", name)
		}
		for i := uint32(1); i <= n; i++ {
			if firstOut[i] < firstOut[i-1] {
				t.Fatalf("%s: FirstOut not monotonic at %d", name, i)
			}
		}
		if firstOut[n] != uint32(len(head)) {
			t.Fatalf("%s: FirstOut[N]=%d != len(head)=%d", name, firstOut[n], len(head))
		}
	}
	checkCSR("forward", pg.FwdFirstOut, pg.FwdHead)
	checkCSR("backward", pg.BwdFirstOut, pg.BwdHead)

	for u := uint32(0); u < n; u++ {
		for e := pg.FwdFirstOut[u]; e < pg.FwdFirstOut[u+1]; e++ {
			v := pg.FwdHead[e]
			if pg.Rank[u] >= pg.Rank[v] {
				t.Fatalf("forward arc %d->%d violates rank[from]<rank[to]", u, v)
			}
		}
		for e := pg.BwdFirstOut[u]; e < pg.BwdFirstOut[u+1]; e++ {
			v := pg.BwdHead[e]
			if pg.Rank[u] >= pg.Rank[v] {
				t.Fatalf("backward arc %d->%d violates rank[from]<rank[to]", u, v)
			}
		}
	}
}

func checkMatchesDijkstra(t *testing.T, g *graph.Graph, pg *PreprocessedGraph) {
	t.Helper()
	qs := NewQueryState(pg)
	for s := uint32(0); s < g.NumNodes; s++ {
		for target := uint32(0); target < g.NumNodes; target++ {
			want := plainDijkstra(g, s, target)
			got := Query(pg, s, target, qs)
			if math.IsInf(want, 1) != math.IsInf(got, 1) {
				t.Fatalf("query(%d,%d) reachability mismatch: want %v got %v", s, target, want, got)
			}
			if !math.IsInf(want, 1) && math.Abs(want-got) > 1e-9 {
				t.Fatalf("query(%d,%d) = %v, want %v", s, target, got, want)
			}
		}
	}
}

func TestTriangle(t *testing.T) {
	g := buildGraph(t, 3, []graph.Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 0, To: 2, Weight: 3},
		{From: 1, To: 2, Weight: 1},
	})
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			checkCSRInvariants(t, pg)
			qs := NewQueryState(pg)
			if got := Query(pg, 0, 2, qs); got != 2.0 {
				t.Errorf("query(0,2) = %v, want 2.0", got)
			}
			if got := Query(pg, 0, 1, qs); got != 1.0 {
				t.Errorf("query(0,1) = %v, want 1.0", got)
			}
			if got := Query(pg, 1, 2, qs); got != 1.0 {
				t.Errorf("query(1,2) = %v, want 1.0", got)
			}
			if got := Query(pg, 2, 0, qs); !math.IsInf(got, 1) {
				t.Errorf("query(2,0) = %v, want +Inf", got)
			}
		})
	}
}

func TestLine(t *testing.T) {
	n := uint32(10)
	var arcs []graph.Arc
	for i := uint32(0); i < n-1; i++ {
		arcs = append(arcs, graph.Arc{From: i, To: i + 1, Weight: 1})
	}
	g := buildGraph(t, n, arcs)
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			qs := NewQueryState(pg)
			if got := Query(pg, 0, 9, qs); got != 9.0 {
				t.Errorf("query(0,9) = %v, want 9.0", got)
			}
			if got := Query(pg, 3, 7, qs); got != 4.0 {
				t.Errorf("query(3,7) = %v, want 4.0", got)
			}
			if got := Query(pg, 9, 0, qs); !math.IsInf(got, 1) {
				t.Errorf("query(9,0) = %v, want +Inf", got)
			}
		})
	}
}

func TestDiamondWithDetour(t *testing.T) {
	g := buildGraph(t, 6, []graph.Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 0, To: 3, Weight: 4},
		{From: 1, To: 2, Weight: 2},
		{From: 1, To: 4, Weight: 5},
		{From: 2, To: 5, Weight: 3},
		{From: 3, To: 4, Weight: 1},
		{From: 4, To: 5, Weight: 2},
	})
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			checkCSRInvariants(t, pg)
			checkMatchesDijkstra(t, g, pg)
			qs := NewQueryState(pg)
			if got := Query(pg, 0, 5, qs); got != 6.0 {
				t.Errorf("query(0,5) = %v, want 6.0", got)
			}
		})
	}
}

func TestIsolatedSink(t *testing.T) {
	g := buildGraph(t, 3, []graph.Arc{
		{From: 0, To: 1, Weight: 5},
		{From: 0, To: 2, Weight: 7},
	})
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			qs := NewQueryState(pg)
			if got := Query(pg, 1, 0, qs); !math.IsInf(got, 1) {
				t.Errorf("query(1,0) = %v, want +Inf", got)
			}
			if got := Query(pg, 0, 2, qs); got != 7.0 {
				t.Errorf("query(0,2) = %v, want 7.0", got)
			}
		})
	}
}

func TestZeroWeightEdge(t *testing.T) {
	g := buildGraph(t, 3, []graph.Arc{
		{From: 0, To: 1, Weight: 0},
		{From: 1, To: 2, Weight: 0},
	})
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			qs := NewQueryState(pg)
			if got := Query(pg, 0, 2, qs); got != 0.0 {
				t.Errorf("query(0,2) = %v, want 0.0", got)
			}
		})
	}
}

func TestEmptyGraph(t *testing.T) {
	g := buildGraph(t, 0, nil)
	for name, pg := range map[string]*PreprocessedGraph{
		"bottomup": PreprocessBottomUp(g),
		"topdown":  PreprocessTopDown(g),
	} {
		t.Run(name, func(t *testing.T) {
			if len(pg.Rank) != 0 {
				t.Errorf("expected empty rank array, got %d entries", len(pg.Rank))
			}
			if len(pg.FwdHead) != 0 || len(pg.BwdHead) != 0 {
				t.Errorf("expected empty CSRs on empty graph")
			}
			qs := NewQueryState(pg)
			if got := Query(pg, 0, 0, qs); !math.IsInf(got, 1) {
				t.Errorf("query on empty graph = %v, want +Inf", got)
			}
		})
	}
}

func TestSingleNode(t *testing.T) {
	g := buildGraph(t, 1, nil)
	pg := PreprocessBottomUp(g)
	if len(pg.Rank) != 1 || pg.Rank[0] != 0 {
		t.Fatalf("expected rank [0], got %v", pg.Rank)
	}
	if len(pg.FwdHead) != 0 || len(pg.BwdHead) != 0 {
		t.Fatalf("expected no arcs for a single isolated node")
	}
	qs := NewQueryState(pg)
	if got := Query(pg, 0, 0, qs); got != 0.0 {
		t.Errorf("query(0,0) = %v, want 0.0", got)
	}
}

func TestSelfQueryAllNodes(t *testing.T) {
	g := buildGraph(t, 5, []graph.Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
		{From: 2, To: 3, Weight: 1},
		{From: 3, To: 4, Weight: 1},
		{From: 4, To: 0, Weight: 1},
	})
	pg := PreprocessBottomUp(g)
	qs := NewQueryState(pg)
	for v := uint32(0); v < 5; v++ {
		if got := Query(pg, v, v, qs); got != 0 {
			t.Errorf("query(%d,%d) = %v, want 0", v, v, got)
		}
	}
}

func TestInvalidEndpoints(t *testing.T) {
	g := buildGraph(t, 3, []graph.Arc{{From: 0, To: 1, Weight: 1}})
	pg := PreprocessBottomUp(g)
	qs := NewQueryState(pg)
	if got := Query(pg, 5, 1, qs); !math.IsInf(got, 1) {
		t.Errorf("query with out-of-range source = %v, want +Inf", got)
	}
	if got := Query(pg, 0, 5, qs); !math.IsInf(got, 1) {
		t.Errorf("query with out-of-range target = %v, want +Inf", got)
	}
}

func TestCorrectnessAgainstDijkstraRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		n := uint32(8 + rng.Intn(20))
		var arcs []graph.Arc
		for u := uint32(0); u < n; u++ {
			degree := rng.Intn(4)
			for k := 0; k < degree; k++ {
				v := uint32(rng.Intn(int(n)))
				if v == u {
					continue
				}
				arcs = append(arcs, graph.Arc{From: u, To: v, Weight: float64(1 + rng.Intn(20))})
			}
		}
		g := buildGraph(t, n, arcs)

		bottomUp := PreprocessBottomUp(g)
		checkCSRInvariants(t, bottomUp)
		checkMatchesDijkstra(t, g, bottomUp)

		topDown := PreprocessTopDown(g)
		checkCSRInvariants(t, topDown)
		checkMatchesDijkstra(t, g, topDown)
	}
}

func TestRankIsPermutation(t *testing.T) {
	g := buildGraph(t, 7, []graph.Arc{
		{From: 0, To: 1, Weight: 2},
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 3, Weight: 2},
		{From: 3, To: 4, Weight: 2},
		{From: 4, To: 5, Weight: 2},
		{From: 5, To: 6, Weight: 2},
		{From: 6, To: 0, Weight: 2},
	})
	pg := PreprocessTopDown(g)
	seen := make([]bool, 7)
	for _, r := range pg.Rank {
		seen[r] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("rank %d missing from permutation", i)
		}
	}
}

func TestOverlayAddOrDecreaseKeepsMinimum(t *testing.T) {
	g := buildGraph(t, 2, nil)
	store := newOverlayStore(g)
	store.addOrDecrease(0, 1, 10, -1)
	store.addOrDecrease(0, 1, 5, 7)
	if len(store.out[0]) != 1 {
		t.Fatalf("expected a single deduplicated arc, got %d", len(store.out[0]))
	}
	if store.out[0][0].weight != 5 || store.out[0][0].middle != 7 {
		t.Errorf("expected minimum-weight arc to win, got %+v", store.out[0][0])
	}
	if len(store.in[1]) != 1 || store.in[1][0].weight != 5 {
		t.Errorf("in-index not kept in sync: %+v", store.in[1])
	}

	store.addOrDecrease(0, 1, 100, 99)
	if store.out[0][0].weight != 5 {
		t.Errorf("higher-weight insertion must not overwrite the cheaper arc")
	}
}

func TestWitnessSearchFindsAndRejects(t *testing.T) {
	// 0->1->2 is the path through the candidate contractee (node 1); 0->2
	// is a direct alternate route the witness search must find once node 1
	// is excluded.
	g := buildGraph(t, 3, []graph.Arc{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
		{From: 0, To: 2, Weight: 2},
	})
	store := newOverlayStore(g)
	contracted := make([]bool, 3)
	ws := newWitnessState(3)

	if !witnessSearch(store, contracted, 0, 2, 1, 2.0, ws) {
		t.Errorf("expected the direct 0->2 witness of weight 2 within bound 2.0")
	}
	if witnessSearch(store, contracted, 0, 2, 1, 1.0, ws) {
		t.Errorf("did not expect a witness within bound 1.0 once node 1 is excluded")
	}
	if !witnessSearch(store, contracted, 0, 0, 1, 0, ws) {
		t.Errorf("source == target must always be a witness of distance 0")
	}
}
