// Package textutil provides text processing utilities for subtitle and
// transcript comparison.
//
// The primary use cases are:
//   - Normalizing subtitle and transcript words into comparable tokens
//     (lowercasing, punctuation and diacritics stripped, markup removed)
//   - Computing Levenshtein similarity ratios between tokens
//   - Weighting tokens by how much alignment evidence they carry
//   - Creating token-based fingerprints for whole-document overlap checks
//
// Normalization is applied identically to subtitle text and transcript words
// so that match scores remain comparable across both streams.
package textutil
