package align

import (
	"context"
	"testing"
)

func TestPairScore(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		tok  transcriptToken
		want float64
	}{
		{
			name: "exact long word full confidence",
			ref:  "prophecy",
			tok:  transcriptToken{normalized: "prophecy", confidence: 1},
			want: 1.0,
		},
		{
			name: "stopword down-weighted",
			ref:  "the",
			tok:  transcriptToken{normalized: "the", confidence: 1},
			want: 0.35,
		},
		{
			name: "unrelated words score zero",
			ref:  "evacuation",
			tok:  transcriptToken{normalized: "harvest", confidence: 1},
			want: 0,
		},
		{
			name: "zero confidence keeps lexical floor",
			ref:  "prophecy",
			tok:  transcriptToken{normalized: "prophecy", confidence: 0},
			want: 0.7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairScore(tt.ref, tt.tok)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("pairScore(%q, %q) = %v, want %v", tt.ref, tt.tok.normalized, got, tt.want)
			}
		})
	}
}

func TestPairScoreFuzzy(t *testing.T) {
	got := pairScore("ordered", transcriptToken{normalized: "ordred", confidence: 1})
	if got < 0.8 || got >= 1 {
		t.Fatalf("fuzzy score = %v, want in [0.8, 1)", got)
	}
}

func TestFindSeedsKeepsMonotonicChain(t *testing.T) {
	refs := []ReferenceToken{
		{GlobalPosition: 0, NormalizedText: "zebra"},
		{GlobalPosition: 1, NormalizedText: "quantum"},
		{GlobalPosition: 2, NormalizedText: "nebula"},
	}
	toks := []transcriptToken{
		{wordIndex: 0, normalized: "quantum"},
		{wordIndex: 1, normalized: "zebra"},
		{wordIndex: 2, normalized: "nebula"},
	}

	seeds := findSeeds(refs, toks)
	if len(seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d: %v", len(seeds), seeds)
	}
	if seeds[0] != (seed{refIdx: 1, tokIdx: 0}) || seeds[1] != (seed{refIdx: 2, tokIdx: 2}) {
		t.Fatalf("seeds = %v", seeds)
	}
}

func TestFindSeedsIgnoresDuplicatesAndShortTokens(t *testing.T) {
	refs := []ReferenceToken{
		{GlobalPosition: 0, NormalizedText: "go"},
		{GlobalPosition: 1, NormalizedText: "village"},
		{GlobalPosition: 2, NormalizedText: "village"},
		{GlobalPosition: 3, NormalizedText: "harvest"},
	}
	toks := []transcriptToken{
		{wordIndex: 0, normalized: "go"},
		{wordIndex: 1, normalized: "village"},
		{wordIndex: 2, normalized: "harvest"},
	}

	seeds := findSeeds(refs, toks)
	if len(seeds) != 1 {
		t.Fatalf("expected 1 seed, got %d: %v", len(seeds), seeds)
	}
	if seeds[0] != (seed{refIdx: 3, tokIdx: 2}) {
		t.Fatalf("seed = %v, want harvest pair", seeds[0])
	}
}

func TestAlignRegionSkipsInsertionsAndMatchesFuzzy(t *testing.T) {
	refs := []ReferenceToken{
		{GlobalPosition: 0, NormalizedText: "captain"},
		{GlobalPosition: 1, NormalizedText: "ordered"},
		{GlobalPosition: 2, NormalizedText: "evacuation"},
	}
	toks := []transcriptToken{
		{wordIndex: 0, normalized: "captain", startMS: 0, confidence: 1},
		{wordIndex: 1, normalized: "um", startMS: 500, confidence: 1},
		{wordIndex: 2, normalized: "ordred", startMS: 1000, confidence: 1},
		{wordIndex: 3, normalized: "evacuation", startMS: 2000, confidence: 1},
	}

	anchors := alignRegion(refs, toks)
	if len(anchors) != 3 {
		t.Fatalf("expected 3 anchors, got %d: %v", len(anchors), anchors)
	}
	wantAudio := []int64{0, 1000, 2000}
	for i, a := range anchors {
		if a.GlobalPosition != i {
			t.Errorf("anchor %d: GlobalPosition = %d", i, a.GlobalPosition)
		}
		if a.AudioMS != wantAudio[i] {
			t.Errorf("anchor %d: AudioMS = %d, want %d", i, a.AudioMS, wantAudio[i])
		}
		if a.Status != StatusCandidate {
			t.Errorf("anchor %d: status = %q", i, a.Status)
		}
	}
	if anchors[1].MatchScore < 0.8 || anchors[1].MatchScore >= 1 {
		t.Errorf("fuzzy anchor score = %v, want in [0.8, 1)", anchors[1].MatchScore)
	}
}

func TestCandidateAnchorsCoversShiftedStream(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "captain ordered immediate evacuation"},
		{Index: 2, StartMS: 3000, EndMS: 5000, Text: "village elders gathered silently"},
		{Index: 3, StartMS: 6000, EndMS: 8000, Text: "storm clouds threatened harvest"},
	}
	refs := referenceTokens(cues)

	const shift = 750
	toks := make([]transcriptToken, 0, len(refs)+1)
	for _, r := range refs {
		toks = append(toks, transcriptToken{
			wordIndex:  len(toks),
			normalized: r.NormalizedText,
			startMS:    r.origMS + shift,
			confidence: 1,
		})
	}
	// Transcription noise between cues must not derail the surrounding
	// matches.
	toks = append(toks[:4:4], append([]transcriptToken{
		{wordIndex: 4, normalized: "uh", startMS: 2600, confidence: 0.4},
	}, toks[4:]...)...)

	anchors, err := candidateAnchors(context.Background(), refs, toks, 2)
	if err != nil {
		t.Fatalf("candidateAnchors: %v", err)
	}
	if len(anchors) != len(refs) {
		t.Fatalf("expected %d anchors, got %d", len(refs), len(anchors))
	}
	lastPos, lastAudio := -1, int64(-1)
	for _, a := range anchors {
		if a.GlobalPosition <= lastPos {
			t.Fatalf("anchor positions not strictly increasing: %v", anchors)
		}
		if a.AudioMS < lastAudio {
			t.Fatalf("anchor audio times regressed: %v", anchors)
		}
		if a.AudioMS != refs[a.GlobalPosition].origMS+shift {
			t.Errorf("anchor at %d: AudioMS = %d, want %d", a.GlobalPosition, a.AudioMS, refs[a.GlobalPosition].origMS+shift)
		}
		lastPos, lastAudio = a.GlobalPosition, a.AudioMS
	}
}

func TestCandidateAnchorsEmptyStreams(t *testing.T) {
	anchors, err := candidateAnchors(context.Background(), nil, nil, 1)
	if err != nil {
		t.Fatalf("candidateAnchors: %v", err)
	}
	if anchors != nil {
		t.Fatalf("expected nil anchors, got %v", anchors)
	}
}
