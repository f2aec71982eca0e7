package whisperx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"anchor/internal/config"
	"anchor/internal/logging"
	"anchor/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Transcriber shells out to the WhisperX CLI.
type Transcriber struct {
	binary      string
	model       string
	device      string
	computeType string
	batchSize   int
	language    string
	logger      *slog.Logger
	run         commandRunner
}

// New builds a Transcriber from the whisperx configuration section.
func New(cfg *config.Config, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		binary:      cfg.WhisperXBinary(),
		model:       cfg.WhisperX.Model,
		device:      cfg.WhisperX.Device,
		computeType: cfg.WhisperX.ComputeType,
		batchSize:   cfg.WhisperX.BatchSize,
		language:    cfg.WhisperX.Language,
		logger:      logger,
		run:         runCommand,
	}
}

// Transcribe runs WhisperX on audioPath, writing its JSON output under
// outputDir, and returns the flattened word timeline. language overrides the
// configured language when non-empty.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outputDir, language string) (Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Transcript{}, services.Wrap(services.ErrValidation, "whisperx", "transcribe", "empty audio path", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Transcript{}, services.Wrap(services.ErrTransient, "whisperx", "transcribe", "create output directory", err)
	}

	args := t.buildArgs(audioPath, outputDir, language)
	t.logger.Info("running whisperx",
		logging.String("audio", audioPath),
		logging.String("model", t.model),
		logging.String("device", t.device),
	)
	stderr, err := t.run(ctx, t.binary, args...)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, "whisperx", "transcribe", strings.TrimSpace(stderr), err)
	}

	jsonPath := filepath.Join(outputDir, outputStem(audioPath)+".json")
	return LoadTranscript(jsonPath)
}

func (t *Transcriber) buildArgs(source, outputDir, language string) []string {
	args := []string{
		source,
		"--model", t.model,
		"--batch_size", strconv.Itoa(t.batchSize),
		"--output_dir", outputDir,
		"--output_format", "json",
		"--device", t.device,
	}
	if t.device != "cuda" && t.computeType != "" {
		args = append(args, "--compute_type", t.computeType)
	}
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = strings.TrimSpace(t.language)
	}
	if lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// outputStem mirrors WhisperX's output naming: source basename without its
// extension.
func outputStem(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
