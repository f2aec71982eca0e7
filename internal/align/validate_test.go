package align

import "testing"

// testRefs builds a reference stream with one token per step milliseconds.
func testRefs(n int, stepMS int64) []ReferenceToken {
	refs := make([]ReferenceToken, n)
	for i := range refs {
		refs[i] = ReferenceToken{GlobalPosition: i, origMS: int64(i) * stepMS}
	}
	return refs
}

func TestValidateAnchorsScoreFloor(t *testing.T) {
	refs := testRefs(3, 1000)
	candidates := []Anchor{
		{GlobalPosition: 0, AudioMS: 0, MatchScore: 0.9, Status: StatusCandidate},
		{GlobalPosition: 1, AudioMS: 1000, MatchScore: 0.3, Status: StatusCandidate},
		{GlobalPosition: 2, AudioMS: 2000, MatchScore: 0.6, Status: StatusCandidate},
	}

	res := validateAnchors(candidates, refs, Options{}.withDefaults())
	if res.rejectedLowScore != 1 {
		t.Fatalf("rejectedLowScore = %d, want 1", res.rejectedLowScore)
	}
	if len(res.valid) != 2 {
		t.Fatalf("valid = %d, want 2", len(res.valid))
	}
	for _, a := range res.valid {
		if a.Status != StatusValid {
			t.Errorf("anchor %d status = %q, want valid", a.GlobalPosition, a.Status)
		}
	}
}

func TestValidateAnchorsRejectsBackwardAudio(t *testing.T) {
	refs := testRefs(4, 1000)
	candidates := []Anchor{
		{GlobalPosition: 0, AudioMS: 1000, MatchScore: 0.9},
		{GlobalPosition: 1, AudioMS: 5000, MatchScore: 0.9},
		{GlobalPosition: 2, AudioMS: 2000, MatchScore: 0.9},
		{GlobalPosition: 3, AudioMS: 6000, MatchScore: 0.9},
	}

	res := validateAnchors(candidates, refs, Options{}.withDefaults())
	if res.rejectedNonMonotonic != 1 {
		t.Fatalf("rejectedNonMonotonic = %d, want 1", res.rejectedNonMonotonic)
	}
	if len(res.valid) != 3 {
		t.Fatalf("valid = %d, want 3", len(res.valid))
	}
	for _, a := range res.valid {
		if a.GlobalPosition == 2 {
			t.Fatalf("backward anchor survived: %+v", a)
		}
	}
}

func TestValidateAnchorsRejectsRepeatedAudioTime(t *testing.T) {
	refs := testRefs(4, 1000)
	candidates := []Anchor{
		{GlobalPosition: 0, AudioMS: 0, MatchScore: 0.9},
		{GlobalPosition: 1, AudioMS: 1000, MatchScore: 0.9},
		{GlobalPosition: 2, AudioMS: 1000, MatchScore: 0.9},
		{GlobalPosition: 3, AudioMS: 2000, MatchScore: 0.9},
	}

	res := validateAnchors(candidates, refs, Options{}.withDefaults())
	if res.rejectedNonMonotonic != 1 {
		t.Fatalf("rejectedNonMonotonic = %d, want 1", res.rejectedNonMonotonic)
	}
	if len(res.valid) != 3 {
		t.Fatalf("valid = %d, want 3", len(res.valid))
	}
	var lastAudio int64 = -1
	for _, a := range res.valid {
		if a.AudioMS <= lastAudio {
			t.Fatalf("valid anchors not strictly increasing in AudioMS: %d then %d", lastAudio, a.AudioMS)
		}
		lastAudio = a.AudioMS
	}
}

func TestValidateAnchorsRejectsDriftOutlier(t *testing.T) {
	const n = 25
	refs := testRefs(n, 5000)
	candidates := make([]Anchor, n)
	for i := range candidates {
		audio := int64(i) * 5000
		if i == 10 {
			// Locally implausible jump that still moves forward in time.
			audio += 1600
		}
		candidates[i] = Anchor{GlobalPosition: i, AudioMS: audio, MatchScore: 0.9}
	}

	res := validateAnchors(candidates, refs, Options{}.withDefaults())
	if res.rejectedOutlier != 1 {
		t.Fatalf("rejectedOutlier = %d, want 1", res.rejectedOutlier)
	}
	if len(res.valid) != n-1 {
		t.Fatalf("valid = %d, want %d", len(res.valid), n-1)
	}
	for _, a := range res.valid {
		if a.GlobalPosition == 10 {
			t.Fatalf("outlier anchor survived: %+v", a)
		}
	}
}

func TestValidateAnchorsToleratesUniformDrift(t *testing.T) {
	const n = 20
	refs := testRefs(n, 2000)
	candidates := make([]Anchor, n)
	for i := range candidates {
		// Constant offset plus mild linear drift must not look like outliers.
		candidates[i] = Anchor{GlobalPosition: i, AudioMS: int64(i)*2000 + 800 + int64(i)*3, MatchScore: 0.9}
	}

	res := validateAnchors(candidates, refs, Options{}.withDefaults())
	if len(res.valid) != n {
		t.Fatalf("valid = %d, want %d (rejected: low=%d mono=%d outlier=%d)",
			len(res.valid), n, res.rejectedLowScore, res.rejectedNonMonotonic, res.rejectedOutlier)
	}
}

func TestValidateAnchorsEmpty(t *testing.T) {
	res := validateAnchors(nil, nil, Options{}.withDefaults())
	if len(res.valid) != 0 {
		t.Fatalf("valid = %d, want 0", len(res.valid))
	}
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianOf(tt.xs); got != tt.want {
				t.Fatalf("medianOf(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}
