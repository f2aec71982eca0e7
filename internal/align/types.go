package align

import "runtime"

// Word is one transcribed spoken token with timing, as supplied by the
// transcript provider. Timestamps are milliseconds from stream start.
type Word struct {
	Text       string
	StartMS    int64
	EndMS      int64
	Confidence float64
}

// Cue is one subtitle entry. Index is the cue's position in the original
// file and must be strictly increasing across the input list. Text is never
// mutated by the engine.
type Cue struct {
	Index   int
	StartMS int64
	EndMS   int64
	Text    string
}

// ReferenceToken is one normalized word extracted from cue text, retaining
// provenance. GlobalPosition is the 0-based index into the flattened
// reference stream; cueOrdinal is the owning cue's position in the input
// list; origMS is the token's approximate time on the original subtitle
// timeline, interpolated across its cue.
type ReferenceToken struct {
	GlobalPosition int
	PositionInCue  int
	NormalizedText string
	cueOrdinal     int
	origMS         int64
}

// AnchorStatus tracks an anchor through validation.
type AnchorStatus string

const (
	StatusCandidate AnchorStatus = "candidate"
	StatusValid     AnchorStatus = "valid"
	StatusRejected  AnchorStatus = "rejected"
)

// Anchor is a claimed correspondence between a reference token and a
// transcript time.
type Anchor struct {
	GlobalPosition int
	AudioMS        int64
	MatchScore     float64
	Status         AnchorStatus
}

// ControlPoint is one point of the drift-corrected time mapping. OrigMS is
// the original subtitle-timeline coordinate of the anchor's reference token;
// AudioMS is the smoothed audio time predicted by the local regression; Rate
// is the regression slope at this point, used for extrapolation past the
// first and last points.
type ControlPoint struct {
	GlobalPosition int
	OrigMS         int64
	AudioMS        float64
	Rate           float64
}

// DriftModel is a piecewise time-mapping function derived from valid
// anchors. When Degraded is set the control points are ignored and the
// single global linear mapping (Scale, Offset) applies to every cue.
type DriftModel struct {
	Points   []ControlPoint
	Degraded bool
	Scale    float64
	Offset   float64
}

// SyncedCue is an output cue with corrected timing. Text is copied verbatim
// from the source cue.
type SyncedCue struct {
	Index      int
	NewStartMS int64
	NewEndMS   int64
	Text       string
}

// Diagnostics summarizes an engine run for logging and CLI display. It is
// never consulted by the alignment logic itself.
type Diagnostics struct {
	ReferenceTokens      int
	TranscriptWords      int
	CandidateAnchors     int
	ValidAnchors         int
	RejectedLowScore     int
	RejectedNonMonotonic int
	RejectedOutlier      int
	Degraded             bool
	FallbackScale        float64
	OverlapsResolved     int
	ClampedDurations     int
}

// Options is the engine's immutable configuration, passed into Sync. The
// zero value is usable: fields fall back to the documented defaults.
type Options struct {
	// ConfidenceFloor rejects anchor candidates scoring below it. Default 0.55.
	ConfidenceFloor float64
	// OutlierTolerance is the multiple of the local median absolute
	// deviation beyond which an anchor's drift is rejected. Default 3.5.
	OutlierTolerance float64
	// DriftWindow is the number of consecutive valid anchors per regression
	// window. Default 15.
	DriftWindow int
	// MinAnchors is the valid-anchor count below which the engine degrades
	// to the global linear fallback. Default 8.
	MinAnchors int
	// MinGapMS is the minimum spacing the zipper enforces between
	// consecutive cues. Zero is a legal gap; negative selects the default
	// of 50.
	MinGapMS int64
	// MinDurationMS is the duration floor the zipper guarantees. Default 600.
	MinDurationMS int64
	// MediaDurationMS, when known, anchors the zero-anchor fallback scale.
	MediaDurationMS int64
	// Workers bounds alignment region parallelism. Default GOMAXPROCS.
	Workers int
}

const (
	defaultConfidenceFloor  = 0.55
	defaultOutlierTolerance = 3.5
	defaultDriftWindow      = 15
	defaultMinAnchors       = 8
	defaultMinGapMS         = 50
	defaultMinDurationMS    = 600

	// minMappedDurationMS keeps interpolated cues from collapsing to zero
	// or negative duration before the zipper applies the configured floor.
	// One frame at 24 fps.
	minMappedDurationMS = 42
)

func (o Options) withDefaults() Options {
	if o.ConfidenceFloor <= 0 {
		o.ConfidenceFloor = defaultConfidenceFloor
	}
	if o.OutlierTolerance <= 0 {
		o.OutlierTolerance = defaultOutlierTolerance
	}
	if o.DriftWindow < 3 {
		o.DriftWindow = defaultDriftWindow
	}
	if o.MinAnchors < 2 {
		o.MinAnchors = defaultMinAnchors
	}
	if o.MinGapMS < 0 {
		o.MinGapMS = defaultMinGapMS
	}
	if o.MinDurationMS <= 0 {
		o.MinDurationMS = defaultMinDurationMS
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}
