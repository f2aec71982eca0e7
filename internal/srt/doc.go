// Package srt reads and writes SubRip subtitle files with millisecond
// timestamps. Parsing is lenient the way players are: malformed blocks are
// skipped, BOMs and CRLF line endings are tolerated, and a period is accepted
// in place of the standard comma before the millisecond field.
package srt
