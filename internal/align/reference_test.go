package align

import (
	"context"
	"testing"
)

func TestWordsFromCuesInterpolatesTimestamps(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 1000, EndMS: 3000, Text: "captain ordered immediate evacuation"},
		{Index: 2, StartMS: 4000, EndMS: 4000, Text: "now"},
	}

	words := WordsFromCues(cues)
	if len(words) != 5 {
		t.Fatalf("len(words) = %d, want 5", len(words))
	}

	wantStarts := []int64{1000, 1500, 2000, 2500, 4000}
	for i, want := range wantStarts {
		if words[i].StartMS != want {
			t.Errorf("word %d start = %d, want %d", i, words[i].StartMS, want)
		}
		if words[i].EndMS < words[i].StartMS {
			t.Errorf("word %d end %d before start %d", i, words[i].EndMS, words[i].StartMS)
		}
		if words[i].Confidence != 1 {
			t.Errorf("word %d confidence = %v, want 1", i, words[i].Confidence)
		}
	}
	if words[3].EndMS != 3000 {
		t.Errorf("last interpolated word end = %d, want cue end 3000", words[3].EndMS)
	}
}

func TestWordsFromCuesSkipsMarkupOnlyCues(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "<i></i>"},
		{Index: 2, StartMS: 2000, EndMS: 3000, Text: "{\\an8}storm warning"},
	}

	words := WordsFromCues(cues)
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if words[0].Text != "storm" || words[1].Text != "warning" {
		t.Fatalf("words = %+v", words)
	}
}

func TestWordsFromCuesFeedSyncAsIdentity(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 2000, Text: "captain ordered immediate evacuation"},
		{Index: 2, StartMS: 3000, EndMS: 5000, Text: "village elders gathered silently"},
		{Index: 3, StartMS: 6000, EndMS: 8000, Text: "storm clouds threatened harvest"},
	}

	synced, diag, err := Sync(context.Background(), WordsFromCues(cues), cues, Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if diag.Degraded {
		t.Fatal("self-alignment degraded")
	}
	for i, cue := range cues {
		if synced[i].NewStartMS != cue.StartMS || synced[i].NewEndMS != cue.EndMS {
			t.Fatalf("cue %d = [%d,%d], want [%d,%d]",
				i, synced[i].NewStartMS, synced[i].NewEndMS, cue.StartMS, cue.EndMS)
		}
	}
}
