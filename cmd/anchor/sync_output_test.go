package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"anchor/internal/align"
	"anchor/internal/syncjob"
)

func sampleResult() *syncjob.Result {
	return &syncjob.Result{
		OutputPath: "/tmp/movie.synced.srt",
		CueCount:   812,
		WordCount:  10423,
		Translated: true,
		CacheHit:   true,
		Elapsed:    3214 * time.Millisecond,
		Diagnostics: align.Diagnostics{
			CandidateAnchors: 640,
			ValidAnchors:     598,
			RejectedLowScore: 30,
			RejectedOutlier:  12,
			OverlapsResolved: 7,
			ClampedDurations: 2,
		},
	}
}

func TestSyncResultRows(t *testing.T) {
	rows := syncResultRows(sampleResult())

	byKey := make(map[string]string, len(rows))
	for _, row := range rows {
		byKey[row[0]] = row[1]
	}
	if byKey["cues"] != "812" {
		t.Fatalf("cues = %q", byKey["cues"])
	}
	if byKey["rejected anchors"] != "42" {
		t.Fatalf("rejected anchors = %q", byKey["rejected anchors"])
	}
	if byKey["mode"] != "drift model" {
		t.Fatalf("mode = %q", byKey["mode"])
	}
	if byKey["translated"] != "yes" || byKey["transcript cache hit"] != "yes" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestSyncResultRowsDegraded(t *testing.T) {
	result := sampleResult()
	result.Diagnostics.Degraded = true
	result.Diagnostics.FallbackScale = 1.0427

	rows := syncResultRows(result)
	found := false
	for _, row := range rows {
		if row[0] == "mode" {
			found = true
			if row[1] != "degraded (scale 1.0427)" {
				t.Fatalf("mode = %q", row[1])
			}
		}
	}
	if !found {
		t.Fatal("mode row missing")
	}
}

func TestPrintSyncResultPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	printSyncResult(&buf, sampleResult())

	out := buf.String()
	requireContains(t, out, "Synced subtitles written to /tmp/movie.synced.srt")
	requireContains(t, out, "valid anchors=598")
	if strings.Contains(out, "╭") {
		t.Fatal("table rendered to a non-terminal writer")
	}
}

func TestRenderTableIncludesHeadersAndRows(t *testing.T) {
	out := renderTable(
		table.Row{"Metric", "Value"},
		[]table.Row{{"cues", "812"}, {"mode", "drift model"}},
		2,
	)
	requireContains(t, out, "Metric")
	requireContains(t, out, "812")
	requireContains(t, out, "drift model")

	if got := renderTable(table.Row{}, nil); got != "" {
		t.Fatalf("empty headers rendered %q", got)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"movie.srt", "movie.synced.srt"},
		{"movie.SRT", "movie.synced.SRT"},
		{"/sub/movie.en.srt", "/sub/movie.en.synced.srt"},
		{"movie.sub", "movie.sub.synced.srt"},
	}
	for _, tc := range cases {
		if got := defaultOutputPath(tc.in); got != tc.want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
