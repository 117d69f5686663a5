// Package fuzzy normalizes artist names and song titles so results from
// different providers can be compared.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*\b(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:remaster(?:ed)?|deluxe|extended|radio edit|from .*?)[^\)\]]*[\)\]]\s*`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s&]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Artist normalizes an artist name: accents stripped, case folded,
// punctuation collapsed and "and" spelled as "&".
func Artist(s string) string {
	s = basic(s)
	return strings.ReplaceAll(s, " and ", " & ")
}

// Title normalizes a song title, dropping featured-artist and edition tags.
func Title(s string) string {
	s = featRegex.ReplaceAllString(s, " ")
	s = versionRegex.ReplaceAllString(s, " ")
	return basic(s)
}

// SameArtist reports whether two artist strings name the same artist.
// Comma-separated credits compare by their first name.
func SameArtist(a, b string) bool {
	a, _, _ = strings.Cut(a, ",")
	b, _, _ = strings.Cut(b, ",")
	na, nb := Artist(a), Artist(b)
	return na != "" && na == nb
}

// Similarity returns a score in [0,1] based on the longest common
// subsequence of the normalized titles.
func Similarity(a, b string) float64 {
	a, b = Title(a), Title(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	return float64(lcs(ra, rb)) / float64(max(len(ra), len(rb)))
}

// Contains reports whether the normalized form of s contains the
// normalized query. An empty query matches nothing.
func Contains(s, query string) bool {
	q := basic(query)
	return q != "" && strings.Contains(basic(s), q)
}

func basic(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	for _, r := range s {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	s = cases.Fold().String(b.String())

	s = punctRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
