// Package media wraps the ffprobe and ffmpeg invocations the sync workflow
// needs: container inspection to find the spoken audio track and its
// duration, and extraction of that track as mono 16kHz PCM for the
// transcription engine.
package media
