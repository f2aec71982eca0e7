// Package whisperx runs the WhisperX CLI to produce a word-level timestamped
// transcript and loads its JSON output into the engine's input types.
package whisperx
