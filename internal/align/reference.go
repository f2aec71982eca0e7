package align

import (
	"strings"

	"anchor/internal/textutil"
)

// WordsFromCues converts an already-synced subtitle into a pseudo-transcript
// so another subtitle can be aligned against it instead of against audio.
// Each cue's words get timestamps interpolated across the cue's span, with
// full confidence: the reference timings are trusted as ground truth.
func WordsFromCues(cues []Cue) []Word {
	words := make([]Word, 0, len(cues)*6)
	for _, cue := range cues {
		fields := strings.Fields(textutil.StripMarkup(cue.Text))
		if len(fields) == 0 {
			continue
		}
		duration := cue.EndMS - cue.StartMS
		for i, field := range fields {
			start := cue.StartMS + duration*int64(i)/int64(len(fields))
			end := cue.StartMS + duration*int64(i+1)/int64(len(fields))
			words = append(words, Word{
				Text:       field,
				StartMS:    start,
				EndMS:      end,
				Confidence: 1,
			})
		}
	}
	return words
}
