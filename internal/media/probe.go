package media

import (
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"anchor/internal/services"
)

// Info is the subset of ffprobe output the workflow consumes.
type Info struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index       int         `json:"index"`
	CodecName   string      `json:"codec_name"`
	CodecType   string      `json:"codec_type"`
	Channels    int         `json:"channels"`
	SampleRate  string      `json:"sample_rate"`
	Disposition Disposition `json:"disposition"`
	Tags        StreamTags  `json:"tags"`
}

// Disposition carries the stream flags ffprobe reports as 0/1 integers.
type Disposition struct {
	Default         int `json:"default"`
	Commentary      int `json:"comment"`
	HearingImpaired int `json:"hearing_impaired"`
}

// StreamTags is container metadata attached to a stream.
type StreamTags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// Format captures container-level metadata.
type Format struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
}

// Probe executes ffprobe against path and decodes the JSON response.
func Probe(ctx context.Context, binary, path string) (Info, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, services.Wrap(services.ErrValidation, "media", "probe", "empty path", nil)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "media", "probe", strings.TrimSpace(string(output)), err)
	}
	return decodeProbeOutput(output)
}

func decodeProbeOutput(data []byte) (Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "media", "probe", "malformed ffprobe output", err)
	}
	return info, nil
}

// DurationMS returns the container duration in milliseconds, or 0 when
// ffprobe did not report one.
func (i Info) DurationMS() int64 {
	cleaned := strings.TrimSpace(i.Format.Duration)
	if cleaned == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

// PrimaryAudioIndex picks the audio stream to transcribe: the default-flagged
// non-commentary track when present, otherwise the first non-commentary audio
// track, otherwise the first audio track. Returns -1 when the container has
// no audio.
func (i Info) PrimaryAudioIndex() int {
	first := -1
	firstClean := -1
	for _, s := range i.Streams {
		if !strings.EqualFold(s.CodecType, "audio") {
			continue
		}
		if first < 0 {
			first = s.Index
		}
		if s.isCommentary() {
			continue
		}
		if firstClean < 0 {
			firstClean = s.Index
		}
		if s.Disposition.Default == 1 {
			return s.Index
		}
	}
	if firstClean >= 0 {
		return firstClean
	}
	return first
}

func (s Stream) isCommentary() bool {
	if s.Disposition.Commentary == 1 {
		return true
	}
	return strings.Contains(strings.ToLower(s.Tags.Title), "commentary")
}

// AudioLanguage returns the ISO language tag of the given audio stream, or
// "" when untagged.
func (i Info) AudioLanguage(index int) string {
	for _, s := range i.Streams {
		if s.Index == index {
			return strings.ToLower(strings.TrimSpace(s.Tags.Language))
		}
	}
	return ""
}
