package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/batchmates/batchmates/client"
)

func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

func formatQuiet(lines ...string) {
	for _, l := range lines {
		fmt.Println(l)
	}
}

// output prints v as JSON, or as a table when headers are given and the
// table format is selected. quiet holds the identifiers printed in quiet mode.
func output(v any, headers []string, rows [][]string, quiet []string) {
	switch flagFmt {
	case "quiet":
		formatQuiet(quiet...)
	case "table":
		if headers == nil {
			formatJSON(v)
			return
		}
		formatTable(headers, rows)
	default:
		formatJSON(v)
	}
}

// outputList prints a plain list of names.
func outputList(v any, header string, names []string) {
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	output(v, []string{header}, rows, names)
}

// outputGraph prints a graph as nodes with their link counts.
func outputGraph(v any, g client.Graph) {
	degree := make(map[string]int, len(g.Nodes))
	for _, l := range g.Links {
		degree[l.Source]++
		degree[l.Target]++
	}

	rows := make([][]string, len(g.Nodes))
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		rows[i] = []string{n.ID, n.Type, strconv.Itoa(degree[n.ID])}
		ids[i] = n.ID
	}
	output(v, []string{"ID", "TYPE", "LINKS"}, rows, ids)
}
