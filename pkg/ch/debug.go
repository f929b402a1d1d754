package ch

import "fmt"

// debugChecks enables internal invariant assertions after preprocessing.
// An invariant violation here is a programming defect, not bad input, so
// the assertions panic. Off in normal builds; flip on when changing the
// contractors or the CSR builder.
const debugChecks = false

// assertPreprocessedInvariants panics if g's rank array is not a
// permutation of [0, N) or either CSR is structurally inconsistent.
func assertPreprocessedInvariants(g *PreprocessedGraph) {
	n := g.NumNodes
	seen := make([]bool, n)
	for v, r := range g.Rank {
		if r >= n {
			panic(fmt.Sprintf("ch: rank[%d]=%d out of range for %d nodes", v, r, n))
		}
		if seen[r] {
			panic(fmt.Sprintf("ch: rank %d assigned twice, not a permutation", r))
		}
		seen[r] = true
	}
	if err := validateCSR(g.FwdFirstOut, g.FwdHead, n); err != nil {
		panic(fmt.Sprintf("ch: forward CSR invalid: %v", err))
	}
	if err := validateCSR(g.BwdFirstOut, g.BwdHead, n); err != nil {
		panic(fmt.Sprintf("ch: backward CSR invalid: %v", err))
	}
}
