package textgraph

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"chgraph/pkg/graph"

	"chgraph/pkg/chtimer"
)

// WriteGraphPlain writes g in the Plain text format ("N E" header, then
// "u v w" lines, 0-based ids) consumable by ReadGraph.
func WriteGraphPlain(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", g.NumNodes, g.NumEdges); err != nil {
		return err
	}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if _, err := fmt.Fprintf(bw, "%d %d %g\n", u, g.Head[e], g.Weight[e]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteMeasurementCSV writes a Measurement as `;`-separated CSV: a header
// row of column keys in ascending lexicographic order (each followed by
// `;`), then rows up to the longest column's length, with missing cells
// left empty but the trailing `;` still emitted.
func WriteMeasurementCSV(w io.Writer, m *chtimer.Measurement) error {
	bw := bufio.NewWriter(w)

	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s;", k); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}

	maxLen := 0
	for _, k := range keys {
		if n := len(m.Data[k]); n > maxLen {
			maxLen = n
		}
	}

	for row := 0; row < maxLen; row++ {
		for _, k := range keys {
			col := m.Data[k]
			if row < len(col) {
				if _, err := fmt.Fprintf(bw, "%d;", col[row].Milliseconds()); err != nil {
					return err
				}
			} else {
				if _, err := bw.WriteString(";"); err != nil {
					return err
				}
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
