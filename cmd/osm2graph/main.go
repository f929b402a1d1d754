// Command osm2graph converts a real-world OpenStreetMap PBF road extract
// into a Plain-format text graph file consumable by pkg/textgraph.ReadGraph
// (and, through it, the CH preprocessing pipeline).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chgraph/pkg/osmimport"
	"chgraph/pkg/textgraph"
)

func main() {
	input := flag.String("input", "", "Path to a .osm.pbf file")
	output := flag.String("output", "graph.txt", "Output Plain-format text graph file path")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: osm2graph --input <file.osm.pbf> [--output graph.txt]")
		os.Exit(1)
	}

	start := time.Now()

	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	result, err := osmimport.Import(context.Background(), f)
	if err != nil {
		log.Fatalf("Failed to import OSM data: %v", err)
	}
	log.Printf("Graph: %d nodes, %d edges", result.Graph.NumNodes, result.Graph.NumEdges)

	log.Printf("Writing Plain-format graph to %s...", *output)
	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()

	if err := textgraph.WriteGraphPlain(out, result.Graph); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}

	log.Printf("Done in %s. Output: %s", time.Since(start).Round(time.Second), *output)
}
