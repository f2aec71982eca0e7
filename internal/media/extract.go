package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"anchor/internal/logging"
	"anchor/internal/services"
)

// ExtractAudio pulls one audio track out of source as mono 16kHz signed PCM,
// the input format the transcription engine expects.
func ExtractAudio(ctx context.Context, logger *slog.Logger, binary, source string, audioIndex int, destination string) error {
	if audioIndex < 0 {
		return services.Wrap(services.ErrValidation, "media", "extract audio", "invalid audio track index", nil)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	start := time.Now()
	if logger != nil {
		logger.Debug("extracting audio track",
			logging.String("source", source),
			logging.Int("audio_index", audioIndex),
			logging.String("destination", destination),
		)
	}

	cmd := exec.CommandContext(ctx, binary, extractArgs(source, audioIndex, destination)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "extract audio", strings.TrimSpace(string(output)), err)
	}

	if logger != nil {
		if info, statErr := os.Stat(destination); statErr == nil {
			logger.Debug("audio track extracted",
				logging.String("destination", destination),
				logging.Float64("size_mb", float64(info.Size())/1_048_576),
				logging.Duration("elapsed", time.Since(start)),
			)
		} else {
			logger.Debug("audio track extracted",
				logging.String("destination", destination),
				logging.Duration("elapsed", time.Since(start)),
			)
		}
	}
	return nil
}

func extractArgs(source string, audioIndex int, destination string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destination,
	}
}
