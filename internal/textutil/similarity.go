package textutil

// stopwords lists common words that are weak alignment evidence: they repeat
// constantly in dialogue and match far-away positions just as well as nearby
// ones.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "do": {}, "for": {}, "he": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "me": {}, "my": {}, "no": {}, "not": {}, "of": {},
	"oh": {}, "on": {}, "or": {}, "she": {}, "so": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "what": {}, "you": {}, "your": {},
}

// LevenshteinRatio returns a similarity in [0,1] between two strings based on
// edit distance: 1 for identical strings, 0 when every character differs.
func LevenshteinRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	dist := levenshtein(ra, rb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(dist)/float64(longest)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// TokenWeight scores how much alignment evidence a normalized token carries.
// Long rare tokens approach 1.0; short or common tokens are down-weighted so
// they cannot create false anchors on their own.
func TokenWeight(token string) float64 {
	var weight float64
	switch n := len([]rune(token)); {
	case n >= 7:
		weight = 1.0
	case n >= 5:
		weight = 0.9
	case n >= 3:
		weight = 0.7
	case n >= 1:
		weight = 0.45
	default:
		return 0
	}
	if _, ok := stopwords[token]; ok {
		weight *= 0.5
	}
	return weight
}
