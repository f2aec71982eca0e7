package align

import "fmt"

// resolveOverlaps is the final pass over reconstructed cues. It enforces the
// duration floor, then removes temporal overlaps in a single forward walk:
// the previous cue's end is trimmed back to make room when it can afford it,
// otherwise the previous cue is pinned at its floor and the current cue
// slides forward with its duration intact. Modifies cues in place and
// reports how many durations were clamped and overlaps resolved.
func resolveOverlaps(cues []SyncedCue, opts Options) (overlaps, clamped int, err error) {
	for i := range cues {
		if cues[i].NewEndMS-cues[i].NewStartMS < opts.MinDurationMS {
			cues[i].NewEndMS = cues[i].NewStartMS + opts.MinDurationMS
			clamped++
		}
		if i == 0 {
			continue
		}
		prev := &cues[i-1]
		if cues[i].NewStartMS >= prev.NewEndMS+opts.MinGapMS {
			continue
		}
		overlaps++

		trimmed := cues[i].NewStartMS - opts.MinGapMS
		if trimmed-prev.NewStartMS >= opts.MinDurationMS {
			prev.NewEndMS = trimmed
			continue
		}

		prev.NewEndMS = prev.NewStartMS + opts.MinDurationMS
		duration := cues[i].NewEndMS - cues[i].NewStartMS
		cues[i].NewStartMS = prev.NewEndMS + opts.MinGapMS
		cues[i].NewEndMS = cues[i].NewStartMS + duration
	}

	for i := range cues {
		if cues[i].NewEndMS < cues[i].NewStartMS {
			return 0, 0, fmt.Errorf("%w: cue %d ends before it starts after overlap resolution", ErrInternalInconsistency, cues[i].Index)
		}
		if i > 0 && cues[i].NewStartMS < cues[i-1].NewEndMS {
			return 0, 0, fmt.Errorf("%w: cue %d overlaps cue %d after overlap resolution", ErrInternalInconsistency, cues[i].Index, cues[i-1].Index)
		}
	}
	return overlaps, clamped, nil
}
