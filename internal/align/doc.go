// Package align implements the elastic alignment engine that resynchronizes
// subtitle cues to a word-level timestamped transcript.
//
// The engine runs six stages, each producing a new artifact from the previous
// one: tokenization, global fuzzy alignment between the subtitle token stream
// and the transcript, anchor validation with outlier rejection, rolling-window
// drift correction, timeline reconstruction for every cue, and a final zipper
// pass that removes temporal overlaps.
//
// The engine is a pure function of its two inputs plus Options: it performs no
// I/O, touches no shared state, and is deterministic. Cue text is never
// modified; only timing is rewritten. When too few reliable anchors survive
// validation the engine degrades to a single global linear scale and reports
// the condition through Diagnostics instead of failing.
package align
