package align

import (
	"fmt"
	"math"
	"sort"
)

// mapMS translates an original-timeline millisecond value through the drift
// model.
func (m DriftModel) mapMS(orig int64) int64 {
	return int64(math.Round(m.mapFloat(float64(orig))))
}

func (m DriftModel) mapFloat(x float64) float64 {
	if m.Degraded || len(m.Points) == 0 {
		return m.Scale*x + m.Offset
	}
	pts := m.Points
	if x <= float64(pts[0].OrigMS) {
		return pts[0].AudioMS + edgeRate(pts[0].Rate)*(x-float64(pts[0].OrigMS))
	}
	last := pts[len(pts)-1]
	if x >= float64(last.OrigMS) {
		return last.AudioMS + edgeRate(last.Rate)*(x-float64(last.OrigMS))
	}
	i := sort.Search(len(pts), func(i int) bool { return float64(pts[i].OrigMS) >= x })
	p0, p1 := pts[i-1], pts[i]
	t := (x - float64(p0.OrigMS)) / (float64(p1.OrigMS) - float64(p0.OrigMS))
	return p0.AudioMS + t*(p1.AudioMS-p0.AudioMS)
}

// edgeRate guards extrapolation past the first and last control points: a
// non-positive regression slope would fold the timeline back on itself.
func edgeRate(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return rate
}

// reconstructTimeline maps every cue's boundaries through the drift model.
// Cues collapsing below one frame are re-inflated from their mapped start,
// and the whole timeline is shifted forward if extrapolation produced a
// negative start. The mapping is monotone by construction; a violation here
// is a defect, not bad input.
func reconstructTimeline(cues []Cue, model DriftModel) ([]SyncedCue, error) {
	out := make([]SyncedCue, 0, len(cues))
	var minStart int64
	for _, c := range cues {
		start := model.mapMS(c.StartMS)
		end := model.mapMS(c.EndMS)
		if end < start+minMappedDurationMS {
			end = start + minMappedDurationMS
		}
		if start < minStart {
			minStart = start
		}
		out = append(out, SyncedCue{
			Index:      c.Index,
			NewStartMS: start,
			NewEndMS:   end,
			Text:       c.Text,
		})
	}

	if minStart < 0 {
		shift := -minStart
		for i := range out {
			out[i].NewStartMS += shift
			out[i].NewEndMS += shift
		}
	}

	for i := 1; i < len(out); i++ {
		if out[i].NewStartMS < out[i-1].NewStartMS {
			return nil, fmt.Errorf("%w: cue %d start %dms precedes cue %d start %dms after reconstruction",
				ErrInternalInconsistency, out[i].Index, out[i].NewStartMS, out[i-1].Index, out[i-1].NewStartMS)
		}
	}
	return out, nil
}
