// Package textnorm canonicalizes player and team names for matching:
// diacritics folded to ASCII, casing and punctuation removed, plus
// alternate spellings ("variants") of a name.
package textnorm

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes raw text: diacritics stripped, transliterated
// to ASCII, lowercased, every non-word character (hyphens included)
// replaced with a space, whitespace collapsed. Total and idempotent;
// empty input yields "".
func Normalize(raw string) string {
	return collapse(strings.ReplaceAll(fold(raw), "-", " "))
}

// Tokens returns the whitespace-separated tokens of the normalized form.
func Tokens(raw string) []string {
	return strings.Fields(Normalize(raw))
}

// FirstLast returns the first and last normalized tokens. A single-token
// name returns that token for both.
func FirstLast(raw string) (string, string) {
	ts := Tokens(raw)
	if len(ts) == 0 {
		return "", ""
	}
	return ts[0], ts[len(ts)-1]
}

// Surname returns the last token after pruning linking particles, the
// form used for surname and phonetic comparison.
func Surname(raw string) string {
	ts := pruneConnectors(Tokens(raw))
	if len(ts) == 0 {
		ts = Tokens(raw)
	}
	if len(ts) == 0 {
		return ""
	}
	return ts[len(ts)-1]
}

// Variants generates the alternate spellings of a name that the scorer
// compares against: the connector-pruned form, first+last, initial+last,
// last only, reversed, hyphen-separated pieces, and a nickname-expanded
// given name. The result is sorted and deduplicated; every entry is in
// Normalize form.
func Variants(raw string) []string {
	base := Normalize(raw)
	if base == "" {
		return nil
	}

	seen := make(map[string]struct{}, 8)
	add := func(v string) {
		if v = Normalize(v); v != "" {
			seen[v] = struct{}{}
		}
	}
	seen[base] = struct{}{}

	// Hyphens survive fold so hyphenated surnames can be split below.
	tokens := strings.Fields(fold(raw))
	pruned := pruneConnectors(tokens)
	if len(pruned) == 0 {
		pruned = tokens
	}
	joined := strings.Join(pruned, " ")
	add(joined)

	first, last := pruned[0], pruned[len(pruned)-1]
	add(last)
	add(first[:1] + " " + last)
	if first != last {
		add(first + " " + last)
		add(last + " " + first)
	}

	if strings.Contains(joined, "-") {
		for _, piece := range strings.Split(joined, "-") {
			add(piece)
		}
	}

	if alt, ok := nicknames[Normalize(first)]; ok {
		add(alt + " " + last)
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// fold strips diacritics, transliterates to ASCII and lowercases,
// keeping hyphens so variant generation can split on them.
func fold(raw string) string {
	folded, _, err := transform.String(foldMarks, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(unidecode.Unidecode(folded))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pruneConnectors(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := connectors[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}
