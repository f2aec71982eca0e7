package align

import "sort"

const (
	// outlierWindow is the half-width, in surviving anchors, of the
	// neighborhood used to judge whether an anchor's drift is locally
	// plausible.
	outlierWindow = 10
	// outlierFloorMS keeps the rejection threshold meaningful when the
	// neighborhood agrees so tightly that the deviation estimate collapses.
	outlierFloorMS = 1500.0
)

type validationResult struct {
	valid                []Anchor
	rejectedLowScore     int
	rejectedNonMonotonic int
	rejectedOutlier      int
}

// validateAnchors filters candidates down to the set trusted by drift
// correction. Three passes: match-score floor, strict forward progress in
// audio time, then local drift-outlier rejection against the rolling median.
func validateAnchors(candidates []Anchor, refs []ReferenceToken, opts Options) validationResult {
	var res validationResult

	scored := make([]Anchor, 0, len(candidates))
	for _, a := range candidates {
		if a.MatchScore < opts.ConfidenceFloor {
			res.rejectedLowScore++
			continue
		}
		scored = append(scored, a)
	}

	// An anchor claiming audio time at or before an already-accepted
	// predecessor contradicts the transcript's own ordering; accepted
	// anchors are strictly increasing in AudioMS.
	monotonic := scored[:0]
	var lastAudio int64 = -1
	for _, a := range scored {
		if a.AudioMS <= lastAudio {
			res.rejectedNonMonotonic++
			continue
		}
		lastAudio = a.AudioMS
		monotonic = append(monotonic, a)
	}

	if len(monotonic) == 0 {
		return res
	}

	drifts := make([]float64, len(monotonic))
	for i, a := range monotonic {
		drifts[i] = float64(a.AudioMS - refs[a.GlobalPosition].origMS)
	}

	res.valid = make([]Anchor, 0, len(monotonic))
	for i, a := range monotonic {
		lo := i - outlierWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + outlierWindow + 1
		if hi > len(drifts) {
			hi = len(drifts)
		}
		med := medianOf(drifts[lo:hi])

		devs := make([]float64, 0, hi-lo)
		for _, d := range drifts[lo:hi] {
			dev := d - med
			if dev < 0 {
				dev = -dev
			}
			devs = append(devs, dev)
		}
		threshold := opts.OutlierTolerance * medianOf(devs)
		if threshold < outlierFloorMS {
			threshold = outlierFloorMS
		}

		dev := drifts[i] - med
		if dev < 0 {
			dev = -dev
		}
		if dev > threshold {
			res.rejectedOutlier++
			continue
		}
		a.Status = StatusValid
		res.valid = append(res.valid, a)
	}
	return res
}

// medianOf does not modify its argument.
func medianOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
