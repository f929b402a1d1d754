// Package chexperiment drives one benchmarking run: read a graph and a
// destinations file, preprocess it with both contractors, time every query
// against each, and dump the resulting measurement as CSV.
package chexperiment

import (
	"fmt"
	"log"
	"os"

	"chgraph/pkg/ch"
	"chgraph/pkg/chtimer"
	"chgraph/pkg/graph"
	"chgraph/pkg/textgraph"
)

// Run executes runCount repetitions of preprocessing (bottom-up, then
// top-down) and, for every destination, runCount repetitions of a query
// against each preprocessed graph, writing all timings to outputFile as CSV.
func Run(graphFile, destinationsFile, outputFile string, runCount int) error {
	if runCount < 1 {
		return fmt.Errorf("chexperiment: run count must be at least 1, got %d", runCount)
	}

	log.Print("experiment started")

	g, err := readGraphFile(graphFile)
	if err != nil {
		return fmt.Errorf("chexperiment: read graph: %w", err)
	}

	dests, err := readDestinationsFile(destinationsFile)
	if err != nil {
		return fmt.Errorf("chexperiment: read destinations: %w", err)
	}

	measurement := chtimer.NewMeasurement()
	var timer chtimer.Timer

	var bottomUp, topDown *ch.PreprocessedGraph

	log.Print("preprocessing graph by bottom-up approach started")
	for i := 0; i < runCount; i++ {
		timer.Start()
		pg := ch.PreprocessBottomUp(g)
		timer.Stop()
		measurement.Add("preproc_graph_bottom_up", timer.Result())
		if i == runCount-1 {
			bottomUp = pg
			log.Print("bottom-up preprocessed graph saved")
		}
	}
	log.Print("preprocessing graph by bottom-up approach finished")

	timeQueries(bottomUp, dests, runCount, "query_route_bottom_up_", measurement, &timer)

	log.Print("preprocessing graph by top-down approach started")
	for i := 0; i < runCount; i++ {
		timer.Start()
		pg := ch.PreprocessTopDown(g)
		timer.Stop()
		measurement.Add("preproc_graph_top_down", timer.Result())
		if i == runCount-1 {
			topDown = pg
			log.Print("top-down preprocessed graph saved")
		}
	}
	log.Print("preprocessing graph by top-down approach finished")

	timeQueries(topDown, dests, runCount, "query_route_top_down_", measurement, &timer)

	log.Print("saving measurements started")
	if err := writeMeasurementFile(outputFile, measurement); err != nil {
		return fmt.Errorf("chexperiment: write measurement: %w", err)
	}
	log.Print("saving measurements finished")

	log.Print("experiment finished")
	return nil
}

func timeQueries(pg *ch.PreprocessedGraph, dests []textgraph.Destination, runCount int, keyPrefix string, measurement *chtimer.Measurement, timer *chtimer.Timer) {
	qs := ch.NewQueryState(pg)
	for destIdx, d := range dests {
		key := fmt.Sprintf("%s%02d", keyPrefix, destIdx)
		for i := 0; i < runCount; i++ {
			timer.Start()
			ch.Query(pg, d.Source, d.Target, qs)
			timer.Stop()
			measurement.Add(key, timer.Result())
		}
	}
}

func readGraphFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return textgraph.ReadGraph(f)
}

func readDestinationsFile(path string) ([]textgraph.Destination, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return textgraph.ReadDestinations(f)
}

func writeMeasurementFile(path string, m *chtimer.Measurement) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return textgraph.WriteMeasurementCSV(f, m)
}
