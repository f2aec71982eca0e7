package align

import "anchor/internal/textutil"

// transcriptToken is a transcript word reduced to its comparable form. Words
// that normalize to nothing (pure punctuation, music notes) are dropped, so
// wordIndex records the position in the original transcript.
type transcriptToken struct {
	wordIndex  int
	normalized string
	startMS    int64
	confidence float64
}

// referenceTokens flattens cue text into the ordered reference stream. Each
// token carries its owning cue and an original-timeline coordinate
// interpolated across the cue's span, so later stages can map anchor
// positions back onto subtitle time.
func referenceTokens(cues []Cue) []ReferenceToken {
	tokens := make([]ReferenceToken, 0, len(cues)*6)
	global := 0
	for ordinal, cue := range cues {
		words := textutil.NormalizeWords(cue.Text)
		if len(words) == 0 {
			continue
		}
		duration := cue.EndMS - cue.StartMS
		for i, w := range words {
			tokens = append(tokens, ReferenceToken{
				GlobalPosition: global,
				PositionInCue:  i,
				NormalizedText: w,
				cueOrdinal:     ordinal,
				origMS:         cue.StartMS + duration*int64(i)/int64(len(words)),
			})
			global++
		}
	}
	return tokens
}

// transcriptTokens normalizes transcript words identically to cue text so
// match scores stay comparable across both streams.
func transcriptTokens(transcript []Word) []transcriptToken {
	tokens := make([]transcriptToken, 0, len(transcript))
	for i, w := range transcript {
		norm := textutil.NormalizeToken(textutil.StripMarkup(w.Text))
		if norm == "" {
			continue
		}
		tokens = append(tokens, transcriptToken{
			wordIndex:  i,
			normalized: norm,
			startMS:    w.StartMS,
			confidence: w.Confidence,
		})
	}
	return tokens
}
