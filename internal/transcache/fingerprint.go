package transcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// fingerprintChunk is how much of each end of the file feeds the hash.
// Hashing whole multi-gigabyte remuxes would cost more than transcription
// saves.
const fingerprintChunk = 4 << 20

// Fingerprint identifies a media file by its size plus hashes of its head
// and tail. Renamed or moved copies hit the cache; a re-encode misses it.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media for fingerprint: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat media for fingerprint: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "size:%d;", info.Size())

	if _, err := io.CopyN(h, f, fingerprintChunk); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("hash media head: %w", err)
	}
	if info.Size() > 2*fingerprintChunk {
		if _, err := f.Seek(-fingerprintChunk, io.SeekEnd); err != nil {
			return "", fmt.Errorf("seek media tail: %w", err)
		}
		if _, err := io.CopyN(h, f, fingerprintChunk); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("hash media tail: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
