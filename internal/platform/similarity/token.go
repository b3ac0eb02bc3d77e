package similarity

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/antzucaro/matchr"
	"github.com/pmezard/go-difflib/difflib"
)

var jaroWinkler = metrics.NewJaroWinkler()

// TokenBackend is the full-capability backend: token-aware ratios in the
// fuzzywuzzy style on top of a sequence matcher, a Jaro-Winkler prefix
// metric, and metaphone/soundex phonetic codes.
type TokenBackend struct{}

func (TokenBackend) Name() string { return BackendToken }

func (TokenBackend) TokenSetRatio(a, b string) float64 {
	return tokenSetRatioWith(a, b, ratio)
}

func (TokenBackend) TokenSortRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return ratio(sortTokens(a), sortTokens(b))
}

// WeightedRatio mirrors the classic WRatio heuristic: the plain ratio,
// the token ratios scaled by 0.95, and for strings of very different
// length the partial (best-window) ratios scaled further down.
func (TokenBackend) WeightedRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	best := ratio(a, b)

	la, lb := float64(len(a)), float64(len(b))
	lenRatio := la / lb
	if lenRatio < 1 {
		lenRatio = lb / la
	}

	const unbaseScale = 0.95
	if lenRatio < 1.5 {
		if s := tokenSetRatioWith(a, b, ratio) * unbaseScale; s > best {
			best = s
		}
		if s := ratio(sortTokens(a), sortTokens(b)) * unbaseScale; s > best {
			best = s
		}
		return best
	}

	partialScale := 0.90
	if lenRatio >= 8 {
		partialScale = 0.60
	}
	if s := partialRatio(a, b) * partialScale; s > best {
		best = s
	}
	if s := partialRatio(sortTokens(a), sortTokens(b)) * unbaseScale * partialScale; s > best {
		best = s
	}
	if s := tokenSetRatioWith(a, b, partialRatio) * unbaseScale * partialScale; s > best {
		best = s
	}
	return best
}

func (TokenBackend) PrefixRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, jaroWinkler)
}

func (TokenBackend) PhoneticCode(word string) string {
	if word == "" {
		return ""
	}
	if primary, _ := matchr.DoubleMetaphone(word); primary != "" {
		return primary
	}
	return matchr.Soundex(word)
}

// ratio is the base pairwise metric: a character-level sequence matcher
// returning 2*M/T, the same shape the token ratios are built on.
func ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// partialRatio slides the shorter string over the longer one, anchored
// at each matching block, and keeps the best window ratio.
func partialRatio(a, b string) float64 {
	shorter, longer := chars(a), chars(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}

		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > 0.995 {
			return 1.0
		}
		if r > best {
			best = r
		}
	}
	return best
}

func tokenSetRatioWith(a, b string, pairwise func(string, string) float64) float64 {
	setA := uniqueTokens(a)
	setB := uniqueTokens(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := pairwise(t0, t1)
	if s := pairwise(t0, t2); s > best {
		best = s
	}
	if s := pairwise(t1, t2); s > best {
		best = s
	}
	return best
}

func sortTokens(s string) string {
	ts := strings.Fields(s)
	sort.Strings(ts)
	return strings.Join(ts, " ")
}

func uniqueTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		out[t] = struct{}{}
	}
	return out
}

func chars(s string) []string {
	return strings.Split(s, "")
}
