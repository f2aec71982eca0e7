package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"anchor/internal/config"
)

func TestRequirementsCoverSyncToolchain(t *testing.T) {
	cfg := config.Default()
	reqs := Requirements(&cfg)

	want := map[string]bool{"FFprobe": false, "FFmpeg": false, "WhisperX": false}
	for _, req := range reqs {
		if _, ok := want[req.Name]; !ok {
			t.Fatalf("unexpected requirement %q", req.Name)
		}
		want[req.Name] = true
		if req.Optional {
			t.Fatalf("%s marked optional", req.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("requirement %s missing", name)
		}
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH fixture uses unix permissions")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "fake-ffprobe")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	t.Setenv("PATH", dir)

	statuses := CheckBinaries([]Requirement{
		{Name: "FFprobe", Command: "fake-ffprobe"},
		{Name: "WhisperX", Command: "definitely-not-installed"},
		{Name: "Blank", Command: "   "},
	})

	if !statuses[0].Available || statuses[0].Command != bin {
		t.Fatalf("resolved status = %+v", statuses[0])
	}
	if statuses[1].Available || statuses[1].Detail == "" {
		t.Fatalf("missing status = %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("blank status = %+v", statuses[2])
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "WhisperX", Available: false},
		{Name: "Extra", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "WhisperX" {
		t.Fatalf("missing = %v", missing)
	}
}
