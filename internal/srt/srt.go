package srt

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"anchor/internal/align"
	"anchor/internal/services"
)

// ParseFile reads an SRT file into ordered cues.
func ParseFile(path string) ([]align.Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "subtitles", "read", path, err)
	}
	return Parse(string(data))
}

// Parse extracts cues from SRT content. Blocks without a parseable timing
// line or with no text are skipped. Cue indices follow the file where the
// file's numbering is strictly increasing; otherwise the offending index is
// repaired to keep the sequence strict.
func Parse(content string) ([]align.Cue, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var cues []align.Cue
	lastIndex := 0
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		timingLine := lines[0]
		textStart := 1
		index, idxErr := strconv.Atoi(strings.TrimSpace(lines[0]))
		if idxErr == nil {
			// Index line present; timing follows.
			timingLine = lines[1]
			textStart = 2
		} else {
			index = lastIndex + 1
		}

		parts := strings.SplitN(timingLine, "-->", 2)
		if len(parts) != 2 {
			continue
		}
		start, err := parseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := parseTimestamp(parts[1])
		if err != nil {
			continue
		}
		if textStart >= len(lines) {
			continue
		}
		text := strings.TrimRight(strings.Join(lines[textStart:], "\n"), " \t")
		if strings.TrimSpace(text) == "" {
			continue
		}

		if index <= lastIndex {
			index = lastIndex + 1
		}
		lastIndex = index

		cues = append(cues, align.Cue{
			Index:   index,
			StartMS: start,
			EndMS:   end,
			Text:    text,
		})
	}
	return cues, nil
}

// Write renders cues as SRT. Indices are written as carried by the cues.
func Write(w io.Writer, cues []align.SyncedCue) error {
	for i, cue := range cues {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		block := fmt.Sprintf("%d\n%s --> %s\n%s\n",
			cue.Index,
			formatTimestamp(cue.NewStartMS),
			formatTimestamp(cue.NewEndMS),
			cue.Text)
		if _, err := io.WriteString(w, block); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes cues to path, replacing any existing file.
func WriteFile(path string, cues []align.SyncedCue) error {
	var sb strings.Builder
	if err := Write(&sb, cues); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "write", path, err)
	}
	return nil
}

// parseTimestamp converts "HH:MM:SS,mmm" to milliseconds. A period before
// the millisecond field is tolerated.
func parseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("negative timestamp %q", value)
	}
	return (int64(hours)*3600+int64(minutes)*60+int64(seconds))*1000 + int64(millis), nil
}

func formatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	millis := ms - seconds*1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
