package align

import "context"

// Sync resynchronizes the cue list to the transcript and returns the
// corrected cues alongside run diagnostics. The inputs are read-only; the
// returned cues are a fresh slice carrying the original text verbatim.
//
// Errors wrapping ErrInputInvalid mean the inputs violated their documented
// ordering contract; errors wrapping ErrInternalInconsistency indicate an
// engine defect. A thin anchor set is not an error: the engine falls back to
// a global linear mapping and reports Degraded through Diagnostics.
func Sync(ctx context.Context, transcript []Word, cues []Cue, opts Options) ([]SyncedCue, Diagnostics, error) {
	opts = opts.withDefaults()
	var diag Diagnostics

	if err := validateInputs(transcript, cues); err != nil {
		return nil, diag, err
	}

	refs := referenceTokens(cues)
	toks := transcriptTokens(transcript)
	diag.ReferenceTokens = len(refs)
	diag.TranscriptWords = len(toks)

	candidates, err := candidateAnchors(ctx, refs, toks, opts.Workers)
	if err != nil {
		return nil, diag, err
	}
	diag.CandidateAnchors = len(candidates)

	vr := validateAnchors(candidates, refs, opts)
	diag.ValidAnchors = len(vr.valid)
	diag.RejectedLowScore = vr.rejectedLowScore
	diag.RejectedNonMonotonic = vr.rejectedNonMonotonic
	diag.RejectedOutlier = vr.rejectedOutlier

	model := buildDriftModel(vr.valid, refs, cues, opts)
	diag.Degraded = model.Degraded
	if model.Degraded {
		diag.FallbackScale = model.Scale
	}

	synced, err := reconstructTimeline(cues, model)
	if err != nil {
		return nil, diag, err
	}

	overlaps, clamped, err := resolveOverlaps(synced, opts)
	if err != nil {
		return nil, diag, err
	}
	diag.OverlapsResolved = overlaps
	diag.ClampedDurations = clamped

	return synced, diag, nil
}
