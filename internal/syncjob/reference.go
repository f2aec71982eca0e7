package syncjob

import (
	"context"
	"time"

	"github.com/google/uuid"

	"anchor/internal/align"
	"anchor/internal/logging"
	"anchor/internal/services"
	"anchor/internal/srt"
)

// ReferenceJob names the inputs of one reference-based sync run: the target
// subtitle is retimed against an already-synced reference subtitle instead of
// the audio track.
type ReferenceJob struct {
	SubtitlePath  string
	ReferencePath string
	OutputPath    string
	// ReferenceLanguage names the reference subtitle's language for ghost
	// translation; empty skips translation even when the scripts diverge.
	ReferenceLanguage string
	ForceTranslate    bool
}

// RunReference executes one reference-based sync. No media probing,
// transcription, or caching is involved: the reference cues are exploded into
// a pseudo-transcript and the target is aligned against it.
func (r *Runner) RunReference(ctx context.Context, job ReferenceJob) (*Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	start := time.Now()

	cues, err := srt.ParseFile(job.SubtitlePath)
	if err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrValidation, "refsync", "parse subtitles", "subtitle file contains no usable cues", nil)
	}

	refCues, err := srt.ParseFile(job.ReferencePath)
	if err != nil {
		return nil, err
	}
	if len(refCues) == 0 {
		return nil, services.Wrap(services.ErrValidation, "refsync", "parse reference", "reference file contains no usable cues", nil)
	}

	words := align.WordsFromCues(refCues)
	logger.Info("reference loaded",
		logging.String("reference", job.ReferencePath),
		logging.Int("reference_cues", len(refCues)),
		logging.Int("pseudo_words", len(words)),
	)

	reference := cues
	overlap, translated := 0.0, false
	if r.translator != nil {
		overlap = scriptOverlap(cues, words)
		if job.ForceTranslate || overlap < r.cfg.Translation.OverlapThreshold {
			if job.ReferenceLanguage == "" {
				logger.Warn("translation wanted but reference language unknown; aligning against original script",
					logging.Float64("overlap", overlap),
				)
			} else {
				ghost, terr := r.translator.Translate(ctx, cues, "", job.ReferenceLanguage)
				if terr != nil {
					return nil, terr
				}
				reference = ghost
				translated = true
			}
		}
	}

	// The reference's own end is the best duration hint for the zero-anchor
	// fallback.
	durationMS := refCues[len(refCues)-1].EndMS
	synced, diag, err := align.Sync(ctx, words, reference, r.engineOptions(durationMS))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "refsync", "align", "alignment engine failed", err)
	}
	if translated {
		for i := range synced {
			synced[i].Text = cues[i].Text
		}
	}

	if diag.Degraded {
		logger.Warn("alignment degraded to global linear fallback",
			logging.Int("valid_anchors", diag.ValidAnchors),
			logging.Float64("fallback_scale", diag.FallbackScale),
		)
	}
	logger.Info("reference alignment complete",
		logging.Int("reference_tokens", diag.ReferenceTokens),
		logging.Int("candidate_anchors", diag.CandidateAnchors),
		logging.Int("valid_anchors", diag.ValidAnchors),
		logging.Int("overlaps_resolved", diag.OverlapsResolved),
		logging.Bool("degraded", diag.Degraded),
	)

	if err := srt.WriteFile(job.OutputPath, synced); err != nil {
		return nil, err
	}
	logger.Info("synced subtitles written",
		logging.String("output", job.OutputPath),
		logging.Int("cues", len(synced)),
		logging.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		RunID:       runID,
		OutputPath:  job.OutputPath,
		CueCount:    len(synced),
		WordCount:   len(words),
		Translated:  translated,
		Overlap:     overlap,
		Diagnostics: diag,
		Elapsed:     time.Since(start),
	}, nil
}
