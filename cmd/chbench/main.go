// Command chbench runs one benchmarking pass over a graph: preprocess it
// with both contractors, time every query in a destinations file against
// each, and write the measurements to a CSV file.
package main

import (
	"fmt"
	"os"
	"strconv"

	"chgraph/pkg/chexperiment"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, "Usage: chbench <graph_file> <destinations_file> <output_file> <run_count>")
		os.Exit(1)
	}

	graphFile := os.Args[1]
	destinationsFile := os.Args[2]
	outputFile := os.Args[3]

	runCount, err := strconv.Atoi(os.Args[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chbench: invalid run_count %q: %v\n", os.Args[4], err)
		os.Exit(1)
	}

	if err := chexperiment.Run(graphFile, destinationsFile, outputFile, runCount); err != nil {
		fmt.Fprintf(os.Stderr, "chbench: %v\n", err)
		os.Exit(1)
	}
}
