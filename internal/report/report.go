// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report prints the end-of-run summary table.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/article-graph/pkg/types"
)

const maxURLWidth = 72

// Print writes one line per result and a totals line to w. Colors are only
// emitted when w is a terminal that supports them.
func Print(w io.Writer, results []types.Result) {
	r := lipgloss.NewRenderer(w)

	head := r.NewStyle().Bold(true)
	ok := r.NewStyle().Foreground(lipgloss.Color("2"))
	failed := r.NewStyle().Foreground(lipgloss.Color("1"))
	dim := r.NewStyle().Faint(true)

	col := func(s string, width int) string {
		return r.NewStyle().Width(width).Render(s)
	}

	fmt.Fprintln(w, head.Render(col("#", 4)+col("Status", 8)+col("Entities", 10)+col("Edges", 7)+"URL"))

	var nOK, nFailed, nEntities int
	for _, res := range results {
		status := ok.Render(col("ok", 8))
		if !res.OK() {
			status = failed.Render(col("failed", 8))
			nFailed++
		} else {
			nOK++
			nEntities += len(res.Entities)
		}
		fmt.Fprintln(w, col(strconv.Itoa(res.Index), 4)+status+
			col(strconv.Itoa(len(res.Entities)), 10)+
			col(strconv.Itoa(len(res.Relationships)), 7)+
			shorten(res.URL, maxURLWidth))
		if !res.OK() {
			fmt.Fprintln(w, dim.Render("    "+shorten(res.Reason(), maxURLWidth)))
		}
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d entities (total: %d)\n",
		nOK, nFailed, nEntities, len(results))
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
