package align

import (
	"errors"
	"fmt"
)

// ErrInputInvalid marks malformed transcript or cue input. It is returned
// before any stage runs; no partial output accompanies it.
var ErrInputInvalid = errors.New("invalid input")

// ErrInternalInconsistency marks a broken ordering invariant detected after
// smoothing or interpolation. It indicates a defect and is never silently
// corrected.
var ErrInternalInconsistency = errors.New("internal inconsistency")

func validateInputs(transcript []Word, cues []Cue) error {
	var lastStart int64 = -1
	for i, w := range transcript {
		if w.EndMS < w.StartMS {
			return fmt.Errorf("%w: word %d ends before it starts (%d < %d)", ErrInputInvalid, i, w.EndMS, w.StartMS)
		}
		if w.StartMS < lastStart {
			return fmt.Errorf("%w: word %d start %dms precedes previous word start %dms", ErrInputInvalid, i, w.StartMS, lastStart)
		}
		if w.Confidence < 0 || w.Confidence > 1 {
			return fmt.Errorf("%w: word %d confidence %v outside [0,1]", ErrInputInvalid, i, w.Confidence)
		}
		lastStart = w.StartMS
	}

	lastIndex := -1
	var lastCueStart int64 = -1
	for i, c := range cues {
		if c.Index <= lastIndex {
			return fmt.Errorf("%w: cue %d index %d not strictly increasing", ErrInputInvalid, i, c.Index)
		}
		if c.EndMS < c.StartMS {
			return fmt.Errorf("%w: cue %d ends before it starts (%d < %d)", ErrInputInvalid, c.Index, c.EndMS, c.StartMS)
		}
		if c.StartMS < lastCueStart {
			return fmt.Errorf("%w: cue %d start %dms precedes previous cue start %dms", ErrInputInvalid, c.Index, c.StartMS, lastCueStart)
		}
		lastIndex = c.Index
		lastCueStart = c.StartMS
	}
	return nil
}
