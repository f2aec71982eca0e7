package align

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"anchor/internal/textutil"
)

const (
	// minFuzzyRatio is the edit-distance similarity below which two tokens
	// are treated as unrelated.
	minFuzzyRatio = 0.7
	// mismatchBias makes a weak diagonal step cost more than a gap pair, so
	// the DP prefers skipping over forcing bad matches.
	mismatchBias = 0.25
	gapPenalty   = 0.15
	// minEmitScore drops matched pairs too weak to be worth validating.
	minEmitScore = 0.25

	// minSeedTokenLen: shorter tokens are too common to seed regions.
	minSeedTokenLen = 4

	minBandHalfWidth = 48
	maxRegionCells   = 4 << 20
)

// pairScore combines exact/fuzzy string similarity with token rarity
// weighting and transcript word confidence into a single score in [0,1].
func pairScore(ref string, tok transcriptToken) float64 {
	sim := 1.0
	if ref != tok.normalized {
		sim = textutil.LevenshteinRatio(ref, tok.normalized)
		if sim < minFuzzyRatio {
			return 0
		}
	}
	score := sim * textutil.TokenWeight(ref)
	return score * (0.7 + 0.3*tok.confidence)
}

// candidateAnchors produces the global fuzzy correspondence between the
// reference stream and the transcript. It first locates unique rare-token
// seeds, then runs banded dynamic programming inside each gap between
// consecutive seeds. Regions are independent by construction and are filled
// in parallel.
func candidateAnchors(ctx context.Context, refs []ReferenceToken, toks []transcriptToken, workers int) ([]Anchor, error) {
	if len(refs) == 0 || len(toks) == 0 {
		return nil, nil
	}

	seeds := findSeeds(refs, toks)

	type region struct{ ra, rb, ta, tb int }
	regions := make([]region, 0, len(seeds)+1)
	prevR, prevT := 0, 0
	for _, s := range seeds {
		regions = append(regions, region{prevR, s.refIdx, prevT, s.tokIdx})
		prevR, prevT = s.refIdx+1, s.tokIdx+1
	}
	regions = append(regions, region{prevR, len(refs), prevT, len(toks)})

	results := make([][]Anchor, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, reg := range regions {
		i, reg := i, reg
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = alignRegion(refs[reg.ra:reg.rb], toks[reg.ta:reg.tb])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Regions are ordered; concatenation with the seed anchors interleaved
	// yields candidates sorted by GlobalPosition.
	anchors := make([]Anchor, 0, len(refs)/2)
	for i := range regions {
		anchors = append(anchors, results[i]...)
		if i < len(seeds) {
			s := seeds[i]
			anchors = append(anchors, Anchor{
				GlobalPosition: refs[s.refIdx].GlobalPosition,
				AudioMS:        toks[s.tokIdx].startMS,
				MatchScore:     pairScore(refs[s.refIdx].NormalizedText, toks[s.tokIdx]),
				Status:         StatusCandidate,
			})
		}
	}
	return anchors, nil
}

type seed struct{ refIdx, tokIdx int }

// findSeeds pairs tokens that occur exactly once in each stream and keeps
// the longest subsequence that is monotonic in both streams.
func findSeeds(refs []ReferenceToken, toks []transcriptToken) []seed {
	refSeen := make(map[string]int, len(refs))
	for i, r := range refs {
		if len(r.NormalizedText) < minSeedTokenLen {
			continue
		}
		if _, dup := refSeen[r.NormalizedText]; dup {
			refSeen[r.NormalizedText] = -1
		} else {
			refSeen[r.NormalizedText] = i
		}
	}
	tokSeen := make(map[string]int, len(toks))
	for i, t := range toks {
		if len(t.normalized) < minSeedTokenLen {
			continue
		}
		if _, dup := tokSeen[t.normalized]; dup {
			tokSeen[t.normalized] = -1
		} else {
			tokSeen[t.normalized] = i
		}
	}

	pairs := make([]seed, 0, len(refSeen))
	for text, ri := range refSeen {
		if ri < 0 {
			continue
		}
		if ti, ok := tokSeen[text]; ok && ti >= 0 {
			pairs = append(pairs, seed{refIdx: ri, tokIdx: ti})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].refIdx < pairs[j].refIdx })

	return longestMonotonicChain(pairs)
}

// longestMonotonicChain keeps the longest subsequence of pairs whose tokIdx
// values are strictly increasing (patience algorithm). The input is already
// sorted by refIdx.
func longestMonotonicChain(pairs []seed) []seed {
	if len(pairs) == 0 {
		return nil
	}
	tails := make([]int, 0, len(pairs))   // indices into pairs
	parents := make([]int, len(pairs))    // previous element in chain
	for i, p := range pairs {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if pairs[tails[mid]].tokIdx < p.tokIdx {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			parents[i] = tails[lo-1]
		} else {
			parents[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	chain := make([]seed, len(tails))
	at := tails[len(tails)-1]
	for i := len(tails) - 1; i >= 0; i-- {
		chain[i] = pairs[at]
		at = parents[at]
	}
	return chain
}

// alignRegion runs a banded Needleman-Wunsch fill over one region and emits
// anchors for the matched pairs on the optimal path.
func alignRegion(refs []ReferenceToken, toks []transcriptToken) []Anchor {
	n, m := len(refs), len(toks)
	if n == 0 || m == 0 {
		return nil
	}

	half := bandHalfWidth(n, m)
	lo := make([]int, n+1)
	hi := make([]int, n+1)
	for i := 0; i <= n; i++ {
		center := i * m / n
		l := center - half
		if l < 0 {
			l = 0
		}
		h := center + half
		if h > m {
			h = m
		}
		lo[i], hi[i] = l, h
	}

	const (
		opNone byte = iota
		opDiag
		opUp
		opLeft
	)
	negInf := math.Inf(-1)

	ops := make([][]byte, n+1)
	prevRow := make([]float64, hi[0]-lo[0]+1)
	ops[0] = make([]byte, hi[0]-lo[0]+1)
	for j := lo[0]; j <= hi[0]; j++ {
		prevRow[j-lo[0]] = -gapPenalty * float64(j)
		if j > 0 {
			ops[0][j-lo[0]] = opLeft
		}
	}

	for i := 1; i <= n; i++ {
		row := make([]float64, hi[i]-lo[i]+1)
		ops[i] = make([]byte, hi[i]-lo[i]+1)
		for j := lo[i]; j <= hi[i]; j++ {
			best := negInf
			op := opNone
			if j >= lo[i-1]+1 && j <= hi[i-1]+1 {
				score := prevRow[j-1-lo[i-1]] + pairScore(refs[i-1].NormalizedText, toks[j-1]) - mismatchBias
				if score > best {
					best, op = score, opDiag
				}
			}
			if j >= lo[i-1] && j <= hi[i-1] {
				if score := prevRow[j-lo[i-1]] - gapPenalty; score > best {
					best, op = score, opUp
				}
			}
			if j > lo[i] {
				if score := row[j-1-lo[i]] - gapPenalty; score > best {
					best, op = score, opLeft
				}
			}
			row[j-lo[i]] = best
			ops[i][j-lo[i]] = op
		}
		prevRow = row
	}

	var anchors []Anchor
	i, j := n, m
	for i > 0 || j > 0 {
		if j < lo[i] || j > hi[i] {
			break
		}
		switch ops[i][j-lo[i]] {
		case opDiag:
			score := pairScore(refs[i-1].NormalizedText, toks[j-1])
			if score >= minEmitScore {
				anchors = append(anchors, Anchor{
					GlobalPosition: refs[i-1].GlobalPosition,
					AudioMS:        toks[j-1].startMS,
					MatchScore:     score,
					Status:         StatusCandidate,
				})
			}
			i--
			j--
		case opUp:
			i--
		case opLeft:
			j--
		default:
			i, j = 0, 0
		}
	}

	// Backtrace walked right-to-left.
	for a, b := 0, len(anchors)-1; a < b; a, b = a+1, b-1 {
		anchors[a], anchors[b] = anchors[b], anchors[a]
	}
	return anchors
}

// bandHalfWidth sizes the DP band: wide enough to absorb the length
// difference between the two streams plus local insertions, narrow enough to
// keep the cell count bounded.
func bandHalfWidth(n, m int) int {
	longest := n
	if m > longest {
		longest = m
	}
	diff := n - m
	if diff < 0 {
		diff = -diff
	}
	half := diff + longest/10 + minBandHalfWidth
	if maxHalf := maxRegionCells / (2 * (n + 1)); half > maxHalf {
		half = maxHalf
		if half < 16 {
			half = 16
		}
	}
	return half
}
