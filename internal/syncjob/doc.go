// Package syncjob orchestrates end-to-end resynchronization runs. The audio
// mode probes the media container, obtains a word-level transcript (cached
// when possible), optionally ghost-translates the subtitle script into the
// audio language, runs the alignment engine, and writes the corrected
// subtitle file. The reference mode skips transcription entirely and aligns
// the target subtitle against an already-synced reference subtitle instead.
package syncjob
