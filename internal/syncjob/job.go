package syncjob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"anchor/internal/align"
	"anchor/internal/config"
	"anchor/internal/logging"
	"anchor/internal/media"
	"anchor/internal/services"
	"anchor/internal/srt"
	"anchor/internal/textutil"
	"anchor/internal/transcache"
	"anchor/internal/translate"
	"anchor/internal/whisperx"
)

// Job names the inputs of one sync run.
type Job struct {
	MediaPath    string
	SubtitlePath string
	OutputPath   string
	// ForceTranslate runs ghost translation even when the lexical overlap
	// check considers the languages to match.
	ForceTranslate bool
	// SkipCache bypasses the transcript cache for this run.
	SkipCache bool
}

// Result summarizes a completed run.
type Result struct {
	RunID       string
	OutputPath  string
	CueCount    int
	WordCount   int
	Translated  bool
	CacheHit    bool
	Overlap     float64
	Diagnostics align.Diagnostics
	Elapsed     time.Duration
}

// Transcriber is the transcription dependency; satisfied by
// *whisperx.Transcriber.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir, language string) (whisperx.Transcript, error)
}

// Runner executes sync jobs.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	transcriber Transcriber
	store       *transcache.Store    // nil disables caching
	translator  translate.Translator // nil disables ghost translation

	probe   func(ctx context.Context, binary, path string) (media.Info, error)
	extract func(ctx context.Context, logger *slog.Logger, binary, source string, audioIndex int, destination string) error
}

// New builds a Runner. store and translator may be nil.
func New(cfg *config.Config, logger *slog.Logger, transcriber Transcriber, store *transcache.Store, translator translate.Translator) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		logger:      logger,
		transcriber: transcriber,
		store:       store,
		translator:  translator,
		probe:       media.Probe,
		extract:     media.ExtractAudio,
	}
}

// Run executes one job and writes the corrected subtitle file.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	start := time.Now()

	cues, err := srt.ParseFile(job.SubtitlePath)
	if err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrValidation, "sync", "parse subtitles", "subtitle file contains no usable cues", nil)
	}

	info, err := r.probe(ctx, r.cfg.FFprobeBinary(), job.MediaPath)
	if err != nil {
		return nil, err
	}
	audioIndex := info.PrimaryAudioIndex()
	if audioIndex < 0 {
		return nil, services.Wrap(services.ErrValidation, "sync", "probe", "media container has no audio stream", nil)
	}
	audioLang := info.AudioLanguage(audioIndex)
	logger.Info("media probed",
		logging.String("media", job.MediaPath),
		logging.Int("audio_index", audioIndex),
		logging.String("audio_language", audioLang),
		logging.Int64("duration_ms", info.DurationMS()),
	)

	transcript, cacheHit, err := r.obtainTranscript(ctx, logger, job, audioIndex, audioLang)
	if err != nil {
		return nil, err
	}
	if len(transcript.Words) == 0 {
		logger.Warn("transcript is empty; sync will degrade to a global fallback")
	}

	reference := cues
	overlap, translated := 0.0, false
	if r.translator != nil {
		overlap = scriptOverlap(cues, transcript.Words)
		if job.ForceTranslate || overlap < r.cfg.Translation.OverlapThreshold {
			targetLang := transcript.Language
			if targetLang == "" {
				targetLang = audioLang
			}
			if targetLang == "" {
				logger.Warn("translation wanted but audio language unknown; aligning against original script",
					logging.Float64("overlap", overlap),
				)
			} else {
				ghost, terr := r.translator.Translate(ctx, cues, "", targetLang)
				if terr != nil {
					return nil, terr
				}
				reference = ghost
				translated = true
			}
		}
	}

	synced, diag, err := align.Sync(ctx, transcript.Words, reference, r.engineOptions(info.DurationMS()))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "sync", "align", "alignment engine failed", err)
	}
	if translated {
		// The ghost list is index-aligned 1:1 with the original cues; the
		// output must carry the original-language text.
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
	logger.Info("alignment complete",
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
		WordCount:   len(transcript.Words),
		Translated:  translated,
		CacheHit:    cacheHit,
		Overlap:     overlap,
		Diagnostics: diag,
		Elapsed:     time.Since(start),
	}, nil
}

// obtainTranscript returns the word timeline for the job's media, consulting
// the cache before extracting audio and running WhisperX.
func (r *Runner) obtainTranscript(ctx context.Context, logger *slog.Logger, job Job, audioIndex int, audioLang string) (whisperx.Transcript, bool, error) {
	model := r.cfg.WhisperX.Model

	var fingerprint string
	if r.store != nil && !job.SkipCache {
		fp, err := transcache.Fingerprint(job.MediaPath)
		if err != nil {
			return whisperx.Transcript{}, false, services.Wrap(services.ErrNotFound, "sync", "fingerprint", job.MediaPath, err)
		}
		fingerprint = fp

		entry, ok, err := r.store.Get(ctx, fingerprint, model)
		if err != nil {
			return whisperx.Transcript{}, false, err
		}
		if ok {
			logger.Info("transcript cache hit",
				logging.String("model", model),
				logging.Int("words", len(entry.Words)),
			)
			return whisperx.Transcript{Words: entry.Words, Language: entry.Language}, true, nil
		}

		if err := r.store.AcquireJobLock(ctx); err != nil {
			return whisperx.Transcript{}, false, err
		}
		defer func() { _ = r.store.ReleaseJobLock() }()

		// Another process may have transcribed while we waited on the lock.
		entry, ok, err = r.store.Get(ctx, fingerprint, model)
		if err != nil {
			return whisperx.Transcript{}, false, err
		}
		if ok {
			return whisperx.Transcript{Words: entry.Words, Language: entry.Language}, true, nil
		}
	}

	workDir, err := os.MkdirTemp(r.cfg.Paths.WorkDir, "sync-*")
	if err != nil {
		return whisperx.Transcript{}, false, services.Wrap(services.ErrTransient, "sync", "workdir", "create scratch directory", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, audioFileName(job.MediaPath))
	if err := r.extract(ctx, logger, r.cfg.FFmpegBinary(), job.MediaPath, audioIndex, audioPath); err != nil {
		return whisperx.Transcript{}, false, err
	}

	language := strings.TrimSpace(r.cfg.WhisperX.Language)
	if language == "" {
		language = audioLang
	}
	transcript, err := r.transcriber.Transcribe(ctx, audioPath, workDir, language)
	if err != nil {
		return whisperx.Transcript{}, false, err
	}

	if fingerprint != "" {
		if err := r.store.Put(ctx, fingerprint, model, transcript.Language, transcript.Words); err != nil {
			logger.Warn("failed to cache transcript", logging.Error(err))
		}
	}
	return transcript, false, nil
}

func (r *Runner) engineOptions(mediaDurationMS int64) align.Options {
	eng := r.cfg.Engine
	return align.Options{
		ConfidenceFloor:  eng.ConfidenceFloor,
		OutlierTolerance: eng.OutlierTolerance,
		DriftWindow:      eng.DriftWindow,
		MinAnchors:       eng.MinAnchors,
		MinGapMS:         eng.MinGapMS,
		MinDurationMS:    eng.MinDurationMS,
		MediaDurationMS:  mediaDurationMS,
		Workers:          eng.Workers,
	}
}

// scriptOverlap measures whole-document lexical similarity between the
// subtitle script and the transcript. Low overlap means the two are in
// different languages (or the subtitles belong to different media).
func scriptOverlap(cues []align.Cue, words []align.Word) float64 {
	var script strings.Builder
	for _, cue := range cues {
		script.WriteString(cue.Text)
		script.WriteByte('\n')
	}
	var spoken strings.Builder
	for _, w := range words {
		spoken.WriteString(w.Text)
		spoken.WriteByte(' ')
	}
	return textutil.CosineSimilarity(
		textutil.NewFingerprint(script.String()),
		textutil.NewFingerprint(spoken.String()),
	)
}

func audioFileName(mediaPath string) string {
	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "audio"
	}
	return fmt.Sprintf("%s.wav", stem)
}
