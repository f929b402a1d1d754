// Package osmimport converts real-world OpenStreetMap road extracts into the
// plain-text graph format that pkg/textgraph (and, through it, pkg/ch)
// consumes. It is a producer for the external graph-file interface, not an
// alternate core — it never builds a preprocessed graph itself.
package osmimport

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"chgraph/pkg/geo"
	"chgraph/pkg/graph"
)

// rawEdge is a directed edge as parsed from OSM, before node compaction.
type rawEdge struct {
	from, to osm.NodeID
	weight   float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward = true
	backward = true

	hw := tags.Find("highway")

	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		forward = false
		backward = false
	}

	return forward, backward
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	nodeIDs  []osm.NodeID
	forward  bool
	backward bool
}

// Result is a compacted graph ready for writing, plus the dense-id → OSM-id
// mapping (useful for diagnostics, not required by pkg/textgraph).
type Result struct {
	Graph   *graph.Graph
	NodeIDs []osm.NodeID // OSM node id for dense node i
}

// Import reads an OSM PBF extract and builds the largest connected
// component of its car-accessible road network as a dense CSR graph,
// with both directions of undirected ways emitted per directionFlags.
func Import(ctx context.Context, rs io.ReadSeeker) (*Result, error) {
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{nodeIDs: nodeIDs, forward: fwd, backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("osmimport: pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("osmimport: pass 2 complete: %d node coordinates collected", len(nodeLat))

	var raw []rawEdge
	var skipped int
	for _, w := range ways {
		for i := 0; i < len(w.nodeIDs)-1; i++ {
			fromID, toID := w.nodeIDs[i], w.nodeIDs[i+1]
			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}

			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if dist == 0 {
				dist = 0.01 // avoid zero-weight edges from duplicate nodes
			}

			if w.forward {
				raw = append(raw, rawEdge{from: fromID, to: toID, weight: dist})
			}
			if w.backward {
				raw = append(raw, rawEdge{from: toID, to: fromID, weight: dist})
			}
		}
	}
	if skipped > 0 {
		log.Printf("osmimport: skipped %d edges with missing node coordinates", skipped)
	}

	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	compact := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	arcs := make([]graph.Arc, 0, len(raw))
	for _, e := range raw {
		arcs = append(arcs, graph.Arc{From: compact(e.from), To: compact(e.to), Weight: e.weight})
	}

	g := graph.FromArcs(uint32(len(nodeIDs)), arcs)
	log.Printf("osmimport: built %d nodes, %d directed edges", g.NumNodes, g.NumEdges)

	component := graph.LargestComponent(g)
	if uint32(len(component)) != g.NumNodes {
		log.Printf("osmimport: filtering to largest component: %d of %d nodes", len(component), g.NumNodes)
	}
	filtered := graph.FilterToComponent(g, component)

	filteredIDs := make([]osm.NodeID, len(component))
	for newIdx, oldIdx := range component {
		filteredIDs[newIdx] = nodeIDs[oldIdx]
	}

	return &Result{Graph: filtered, NodeIDs: filteredIDs}, nil
}
