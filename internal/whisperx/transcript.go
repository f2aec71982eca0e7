package whisperx

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"anchor/internal/align"
	"anchor/internal/services"
)

type payloadWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type payloadSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []payloadWord `json:"words"`
}

type payload struct {
	Segments []payloadSegment `json:"segments"`
	Language string           `json:"language"`
}

// Transcript is the flattened word timeline plus the language WhisperX
// detected (or was told).
type Transcript struct {
	Words    []align.Word
	Language string
}

// LoadTranscript reads a WhisperX JSON file and flattens its segments into
// the word timeline the engine consumes. Words WhisperX could not align
// (no timestamps) are dropped; a rare timing regression between adjacent
// words is clamped forward so the sequence stays non-decreasing.
func LoadTranscript(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrNotFound, "whisperx", "load transcript", path, err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, "whisperx", "load transcript", "malformed whisperx json", err)
	}

	var words []align.Word
	var lastStart int64
	for _, seg := range p.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start == nil || w.End == nil {
				continue
			}
			start := msFromSeconds(*w.Start)
			end := msFromSeconds(*w.End)
			if end < start {
				end = start
			}
			if start < lastStart {
				start = lastStart
				if end < start {
					end = start
				}
			}
			lastStart = start

			confidence := 1.0
			if w.Score != nil {
				confidence = *w.Score
			}
			if confidence < 0 {
				confidence = 0
			} else if confidence > 1 {
				confidence = 1
			}

			words = append(words, align.Word{
				Text:       text,
				StartMS:    start,
				EndMS:      end,
				Confidence: confidence,
			})
		}
	}
	return Transcript{Words: words, Language: strings.ToLower(strings.TrimSpace(p.Language))}, nil
}

func msFromSeconds(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
