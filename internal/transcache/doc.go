// Package transcache persists WhisperX transcripts in SQLite so repeat syncs
// of the same media skip transcription, by far the slowest step. Entries are
// keyed by a content fingerprint of the media file plus the model that
// produced the transcript. A file lock serializes transcription across
// processes sharing one cache directory.
package transcache
