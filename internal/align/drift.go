package align

const (
	// fallbackScaleMin/Max bound the degraded global mapping. A fit outside
	// this range means the anchors are garbage, and identity-with-offset is
	// safer than amplifying their error across the whole file.
	fallbackScaleMin = 0.5
	fallbackScaleMax = 2.0
)

// buildDriftModel derives the time mapping from the surviving anchors. With
// at least opts.MinAnchors it emits one smoothed control point per anchor,
// each the prediction of a least-squares regression over a window of
// opts.DriftWindow consecutive anchors. Below that it degrades to a single
// global linear mapping.
func buildDriftModel(valid []Anchor, refs []ReferenceToken, cues []Cue, opts Options) DriftModel {
	if len(valid) < opts.MinAnchors {
		scale, offset := fallbackMapping(valid, refs, cues, opts)
		return DriftModel{Degraded: true, Scale: scale, Offset: offset}
	}

	points := make([]ControlPoint, 0, len(valid))
	half := opts.DriftWindow / 2
	for i, a := range valid {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := lo + opts.DriftWindow
		if hi > len(valid) {
			hi = len(valid)
			lo = hi - opts.DriftWindow
			if lo < 0 {
				lo = 0
			}
		}
		slope, intercept := leastSquares(valid[lo:hi], refs)
		orig := refs[a.GlobalPosition].origMS
		points = append(points, ControlPoint{
			GlobalPosition: a.GlobalPosition,
			OrigMS:         orig,
			AudioMS:        slope*float64(orig) + intercept,
			Rate:           slope,
		})
	}

	// Smoothing can reorder nearby points; interpolation needs both
	// coordinates non-decreasing. Collapse duplicates on the original axis
	// and force forward progress on the audio axis.
	deduped := points[:0]
	for _, p := range points {
		if len(deduped) > 0 && p.OrigMS <= deduped[len(deduped)-1].OrigMS {
			continue
		}
		if len(deduped) > 0 && p.AudioMS <= deduped[len(deduped)-1].AudioMS {
			p.AudioMS = deduped[len(deduped)-1].AudioMS + 1
		}
		deduped = append(deduped, p)
	}
	return DriftModel{Points: deduped}
}

// leastSquares fits audio time as a linear function of original time over a
// window of anchors. A degenerate window (all anchors at one original time)
// falls back to unit rate through the window's centroid.
func leastSquares(window []Anchor, refs []ReferenceToken) (slope, intercept float64) {
	n := float64(len(window))
	var sumX, sumY, sumXX, sumXY float64
	for _, a := range window {
		x := float64(refs[a.GlobalPosition].origMS)
		y := float64(a.AudioMS)
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 1, (sumY - sumX) / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// fallbackMapping chooses the degraded global mapping: a two-point linear
// fit when at least two anchors exist, a pure offset for one anchor, a
// duration ratio when the media length is known, identity otherwise.
func fallbackMapping(valid []Anchor, refs []ReferenceToken, cues []Cue, opts Options) (scale, offset float64) {
	switch {
	case len(valid) >= 2:
		first, last := valid[0], valid[len(valid)-1]
		x0 := float64(refs[first.GlobalPosition].origMS)
		x1 := float64(refs[last.GlobalPosition].origMS)
		if x1 > x0 {
			scale = (float64(last.AudioMS) - float64(first.AudioMS)) / (x1 - x0)
			if scale >= fallbackScaleMin && scale <= fallbackScaleMax {
				return scale, float64(first.AudioMS) - scale*x0
			}
		}
		return 1, float64(first.AudioMS) - x0
	case len(valid) == 1:
		a := valid[0]
		return 1, float64(a.AudioMS) - float64(refs[a.GlobalPosition].origMS)
	default:
		if opts.MediaDurationMS > 0 && len(cues) > 0 {
			if lastEnd := cues[len(cues)-1].EndMS; lastEnd > 0 {
				scale = float64(opts.MediaDurationMS) / float64(lastEnd)
				if scale >= fallbackScaleMin && scale <= fallbackScaleMax {
					return scale, 0
				}
			}
		}
		return 1, 0
	}
}
