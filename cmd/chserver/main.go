// Command chserver serves shortest-path distance queries over a
// contraction-hierarchies preprocessed graph, using a binary cache to avoid
// re-contracting on every restart.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chgraph/pkg/api"
	"chgraph/pkg/ch"
	"chgraph/pkg/textgraph"
)

func main() {
	graphPath := flag.String("graph", "", "Path to a Plain/DIMACS-like text graph (required if -cache doesn't already exist)")
	cachePath := flag.String("cache", "graph.chbin", "Path to the preprocessed graph binary cache")
	topDown := flag.Bool("top-down", false, "Use the static top-down contractor instead of the default bottom-up one")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	pg, err := loadOrBuild(*graphPath, *cachePath, *topDown)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Ready in %s: %d nodes, %d fwd edges, %d bwd edges",
		time.Since(start).Round(time.Millisecond), pg.NumNodes, len(pg.FwdHead), len(pg.BwdHead))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes:    pg.NumNodes,
		NumFwdEdges: len(pg.FwdHead),
		NumBwdEdges: len(pg.BwdHead),
	}

	handlers := api.NewHandlers(pg, stats)
	srv := api.NewServer(cfg, handlers)

	if err := srv.ListenAndServe(); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// loadOrBuild loads a preprocessed graph from cachePath if it exists,
// otherwise preprocesses graphPath and writes the result to cachePath for
// the next run.
func loadOrBuild(graphPath, cachePath string, topDown bool) (*ch.PreprocessedGraph, error) {
	if _, err := os.Stat(cachePath); err == nil {
		log.Printf("Loading cached preprocessed graph from %s...", cachePath)
		return ch.ReadBinary(cachePath)
	}

	if graphPath == "" {
		return nil, fmt.Errorf("no cache at %s and -graph not given", cachePath)
	}

	f, err := os.Open(graphPath)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	g, err := textgraph.ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	log.Printf("Parsed graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	log.Println("Preprocessing (this may take a while)...")
	var pg *ch.PreprocessedGraph
	if topDown {
		pg = ch.PreprocessTopDown(g)
	} else {
		pg = ch.PreprocessBottomUp(g)
	}

	log.Printf("Writing cache to %s...", cachePath)
	if err := ch.WriteBinary(cachePath, pg); err != nil {
		log.Printf("warning: failed to write cache: %v", err)
	}

	return pg, nil
}
