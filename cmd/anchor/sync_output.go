package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"anchor/internal/syncjob"
)

const timePrecision = 10 * time.Millisecond

func printSyncResult(w io.Writer, result *syncjob.Result) {
	fmt.Fprintf(w, "Synced subtitles written to %s\n", result.OutputPath)

	rows := syncResultRows(result)
	if isTerminal(w) {
		tableRows := make([]table.Row, len(rows))
		for i, row := range rows {
			tableRows[i] = table.Row{row[0], row[1]}
		}
		fmt.Fprintln(w, renderTable(table.Row{"Metric", "Value"}, tableRows, 2))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s=%s\n", row[0], row[1])
	}
}

func syncResultRows(result *syncjob.Result) [][2]string {
	diag := result.Diagnostics

	mode := "drift model"
	if diag.Degraded {
		mode = fmt.Sprintf("degraded (scale %.4f)", diag.FallbackScale)
	}

	rejected := diag.RejectedLowScore + diag.RejectedNonMonotonic + diag.RejectedOutlier

	return [][2]string{
		{"cues", strconv.Itoa(result.CueCount)},
		{"transcript words", strconv.Itoa(result.WordCount)},
		{"candidate anchors", strconv.Itoa(diag.CandidateAnchors)},
		{"valid anchors", strconv.Itoa(diag.ValidAnchors)},
		{"rejected anchors", strconv.Itoa(rejected)},
		{"mode", mode},
		{"overlaps resolved", strconv.Itoa(diag.OverlapsResolved)},
		{"durations clamped", strconv.Itoa(diag.ClampedDurations)},
		{"translated", yesNo(result.Translated)},
		{"transcript cache hit", yesNo(result.CacheHit)},
		{"elapsed", result.Elapsed.Round(timePrecision).String()},
	}
}
