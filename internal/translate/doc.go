// Package translate produces a "ghost" cue list: the subtitle script
// rendered in the transcript's language, index-aligned 1:1 with the
// original cues. The ghost list serves as the alignment reference when
// subtitle and audio languages differ; corrected timings are applied back
// onto the original-language cues by index, so translated text never reaches
// the output file.
package translate
