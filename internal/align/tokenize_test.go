package align

import (
	"reflect"
	"testing"
)

func TestReferenceTokensInterpolatesOriginalTime(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 1000, EndMS: 2000, Text: "Hello, wonderful World!"},
		{Index: 2, StartMS: 4000, EndMS: 4600, Text: "<i>Goodbye</i>"},
	}

	tokens := referenceTokens(cues)
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}

	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.NormalizedText
		if tok.GlobalPosition != i {
			t.Errorf("token %d: GlobalPosition = %d", i, tok.GlobalPosition)
		}
	}
	want := []string{"hello", "wonderful", "world", "goodbye"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("texts = %v, want %v", texts, want)
	}

	wantOrig := []int64{1000, 1333, 1666, 4000}
	for i, tok := range tokens {
		if tok.origMS != wantOrig[i] {
			t.Errorf("token %q: origMS = %d, want %d", tok.NormalizedText, tok.origMS, wantOrig[i])
		}
	}
	if tokens[3].cueOrdinal != 1 || tokens[3].PositionInCue != 0 {
		t.Errorf("goodbye provenance = (%d,%d), want (1,0)", tokens[3].cueOrdinal, tokens[3].PositionInCue)
	}
}

func TestReferenceTokensSkipsEmptyCues(t *testing.T) {
	cues := []Cue{
		{Index: 1, StartMS: 0, EndMS: 500, Text: "{\\an8}"},
		{Index: 2, StartMS: 1000, EndMS: 1500, Text: "music"},
	}
	tokens := referenceTokens(cues)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].GlobalPosition != 0 || tokens[0].cueOrdinal != 1 {
		t.Errorf("token = %+v, want GlobalPosition 0 from cue ordinal 1", tokens[0])
	}
}

func TestTranscriptTokensDropsUnspeakable(t *testing.T) {
	words := []Word{
		{Text: "Captain,", StartMS: 100, EndMS: 400, Confidence: 0.95},
		{Text: "...", StartMS: 500, EndMS: 600, Confidence: 0.2},
		{Text: "Résumé", StartMS: 700, EndMS: 1100, Confidence: 0.8},
	}
	tokens := transcriptTokens(words)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].normalized != "captain" || tokens[0].wordIndex != 0 {
		t.Errorf("first token = %+v", tokens[0])
	}
	if tokens[1].normalized != "resume" || tokens[1].wordIndex != 2 {
		t.Errorf("second token = %+v", tokens[1])
	}
	if tokens[1].startMS != 700 || tokens[1].confidence != 0.8 {
		t.Errorf("second token timing = %+v", tokens[1])
	}
}
