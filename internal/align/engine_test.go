package align

import (
	"context"
	"errors"
	"math"
	"testing"
)

// fixtureCues is dialogue with distinct, anchor-friendly vocabulary: four
// cues of four words each, two-second cues spaced one second apart.
func fixtureCues() []Cue {
	return []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "captain ordered immediate evacuation"},
		{Index: 2, StartMS: 3000, EndMS: 5000, Text: "village elders gathered silently"},
		{Index: 3, StartMS: 6000, EndMS: 8000, Text: "storm clouds threatened harvest"},
		{Index: 4, StartMS: 9000, EndMS: 11000, Text: "prophecy foretold another kingdom"},
	}
}

// fixtureTranscript places each spoken word at remap(tokenOriginalMS).
func fixtureTranscript(cues []Cue, remap func(int64) int64) []Word {
	var words []Word
	for _, r := range referenceTokens(cues) {
		at := remap(r.origMS)
		words = append(words, Word{
			Text:       r.NormalizedText,
			StartMS:    at,
			EndMS:      at + 400,
			Confidence: 1,
		})
	}
	return words
}

func TestSyncPerfectInputIsUnchanged(t *testing.T) {
	cues := fixtureCues()
	transcript := fixtureTranscript(cues, func(ms int64) int64 { return ms })

	out, diag, err := Sync(context.Background(), transcript, cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if diag.Degraded {
		t.Fatal("degraded on perfect input")
	}
	if diag.ValidAnchors != diag.ReferenceTokens {
		t.Fatalf("valid anchors = %d, want %d", diag.ValidAnchors, diag.ReferenceTokens)
	}
	if diag.OverlapsResolved != 0 || diag.ClampedDurations != 0 {
		t.Fatalf("zipper intervened on perfect input: %+v", diag)
	}
	if len(out) != len(cues) {
		t.Fatalf("got %d cues, want %d", len(out), len(cues))
	}
	for i, c := range out {
		if c.Index != cues[i].Index || c.Text != cues[i].Text {
			t.Errorf("cue %d lost identity: %+v", i, c)
		}
		if c.NewStartMS != cues[i].StartMS || c.NewEndMS != cues[i].EndMS {
			t.Errorf("cue %d moved: [%d,%d], want [%d,%d]",
				i, c.NewStartMS, c.NewEndMS, cues[i].StartMS, cues[i].EndMS)
		}
	}
}

func TestSyncAdLibbedCueInterpolates(t *testing.T) {
	// The third cue exists only in the script; the audio never speaks it.
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "captain ordered immediate evacuation"},
		{Index: 2, StartMS: 3000, EndMS: 5000, Text: "village elders gathered silently"},
		{Index: 3, StartMS: 5200, EndMS: 5800, Text: "xylophone quixotic zeppelin jamboree"},
		{Index: 4, StartMS: 6000, EndMS: 8000, Text: "storm clouds threatened harvest"},
		{Index: 5, StartMS: 9000, EndMS: 11000, Text: "prophecy foretold another kingdom"},
	}
	spoken := append(append([]Cue{}, cues[:2]...), cues[3:]...)
	transcript := fixtureTranscript(spoken, func(ms int64) int64 { return ms })

	out, diag, err := Sync(context.Background(), transcript, cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if diag.Degraded {
		t.Fatal("degraded despite 16 matchable tokens")
	}
	if len(out) != len(cues) {
		t.Fatalf("got %d cues, want %d", len(out), len(cues))
	}
	for i := 1; i < len(out); i++ {
		if out[i].NewStartMS < out[i-1].NewEndMS {
			t.Fatalf("cues %d and %d overlap: %+v", i-1, i, out)
		}
	}
	// Neighbors of the ad-lib keep their true timing.
	for _, i := range []int{0, 1, 3, 4} {
		if out[i].NewStartMS != cues[i].StartMS {
			t.Errorf("cue %d start = %d, want %d", i, out[i].NewStartMS, cues[i].StartMS)
		}
	}
	if out[2].Text != cues[2].Text {
		t.Errorf("ad-lib text mutated: %q", out[2].Text)
	}
}

func TestSyncRecoversUniformDrift(t *testing.T) {
	// +40ms per 60 seconds, the classic frame-rate mismatch.
	const rate = 1 + 40.0/60000.0
	cues := fixtureCues()
	transcript := fixtureTranscript(cues, func(ms int64) int64 {
		return int64(math.Round(float64(ms) * rate))
	})

	out, diag, err := Sync(context.Background(), transcript, cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if diag.Degraded {
		t.Fatal("degraded on drifted input")
	}
	for i, c := range out {
		wantStart := int64(math.Round(float64(cues[i].StartMS) * rate))
		wantEnd := int64(math.Round(float64(cues[i].EndMS) * rate))
		if d := c.NewStartMS - wantStart; d > 42 || d < -42 {
			t.Errorf("cue %d start = %d, want %d +/- 42", i, c.NewStartMS, wantStart)
		}
		if d := c.NewEndMS - wantEnd; d > 42 || d < -42 {
			t.Errorf("cue %d end = %d, want %d +/- 42", i, c.NewEndMS, wantEnd)
		}
	}
}

func TestSyncDegradesWithSparseTranscript(t *testing.T) {
	cues := fixtureCues()
	transcript := []Word{
		{Text: "captain", StartMS: 500, EndMS: 900, Confidence: 1},
		{Text: "kingdom", StartMS: 11000, EndMS: 11400, Confidence: 1},
	}

	out, diag, err := Sync(context.Background(), transcript, cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !diag.Degraded {
		t.Fatal("expected degraded mode with 2 anchors")
	}
	if diag.ValidAnchors != 2 {
		t.Fatalf("valid anchors = %d, want 2", diag.ValidAnchors)
	}
	if diag.FallbackScale != 1 {
		t.Fatalf("fallback scale = %v, want 1", diag.FallbackScale)
	}
	for i, c := range out {
		if c.NewStartMS != cues[i].StartMS+500 || c.NewEndMS != cues[i].EndMS+500 {
			t.Errorf("cue %d = [%d,%d], want input shifted by 500", i, c.NewStartMS, c.NewEndMS)
		}
	}
}

func TestSyncEmptyTranscriptIsIdentity(t *testing.T) {
	cues := fixtureCues()

	out, diag, err := Sync(context.Background(), nil, cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !diag.Degraded || diag.FallbackScale != 1 {
		t.Fatalf("diag = %+v, want degraded identity", diag)
	}
	for i, c := range out {
		if c.NewStartMS != cues[i].StartMS || c.NewEndMS != cues[i].EndMS {
			t.Errorf("cue %d moved with no evidence: %+v", i, c)
		}
	}
}

func TestSyncRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		transcript []Word
		cues       []Cue
	}{
		{
			name:       "word ends before start",
			transcript: []Word{{Text: "a", StartMS: 500, EndMS: 400, Confidence: 1}},
			cues:       fixtureCues(),
		},
		{
			name: "words out of order",
			transcript: []Word{
				{Text: "a", StartMS: 500, EndMS: 600, Confidence: 1},
				{Text: "b", StartMS: 100, EndMS: 200, Confidence: 1},
			},
			cues: fixtureCues(),
		},
		{
			name:       "confidence out of range",
			transcript: []Word{{Text: "a", StartMS: 0, EndMS: 100, Confidence: 1.5}},
			cues:       fixtureCues(),
		},
		{
			name:       "cue indices not increasing",
			transcript: nil,
			cues: []Cue{
				{Index: 2, StartMS: 0, EndMS: 1000, Text: "a"},
				{Index: 2, StartMS: 2000, EndMS: 3000, Text: "b"},
			},
		},
		{
			name:       "cue ends before start",
			transcript: nil,
			cues:       []Cue{{Index: 1, StartMS: 1000, EndMS: 500, Text: "a"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Sync(context.Background(), tt.transcript, tt.cues, Options{})
			if !errors.Is(err, ErrInputInvalid) {
				t.Fatalf("err = %v, want ErrInputInvalid", err)
			}
		})
	}
}

func TestSyncIsDeterministicAcrossWorkerCounts(t *testing.T) {
	const rate = 1.0007
	cues := fixtureCues()
	transcript := fixtureTranscript(cues, func(ms int64) int64 {
		return int64(math.Round(float64(ms)*rate)) + 250
	})

	var first []SyncedCue
	for _, workers := range []int{1, 2, 8} {
		out, _, err := Sync(context.Background(), transcript, cues, Options{Workers: workers})
		if err != nil {
			t.Fatalf("Sync with %d workers: %v", workers, err)
		}
		if first == nil {
			first = out
			continue
		}
		for i := range out {
			if out[i] != first[i] {
				t.Fatalf("workers=%d diverged at cue %d: %+v vs %+v", workers, i, out[i], first[i])
			}
		}
	}
}
