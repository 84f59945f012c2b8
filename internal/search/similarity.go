// Package search ranks catalog blocks and variants against free-text queries.
package search

import (
	"regexp"
	"strings"
)

var wordSepRe = regexp.MustCompile(`[\s-]+`)

// Similarity scores two strings in [0, 1], case-insensitively. Equal strings
// score 1 and containment scores 0.9. Otherwise the score is the larger of the
// edit-distance score and a blend weighting word overlap at 0.7.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(a)
	s2 := strings.ToLower(b)
	if s1 == s2 {
		return 1
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.9
	}

	words1 := wordSepRe.Split(s1, -1)
	words2 := wordSepRe.Split(s2, -1)
	matched := 0
	for _, w1 := range words1 {
		for _, w2 := range words2 {
			if w1 == w2 || strings.Contains(w1, w2) || strings.Contains(w2, w1) {
				matched++
				break
			}
		}
	}
	wordScore := float64(matched) / float64(max(len(words1), len(words2)))

	r1, r2 := []rune(s1), []rune(s2)
	maxLen := max(len(r1), len(r2))
	if maxLen == 0 {
		return 1
	}
	editScore := 1 - float64(levenshtein(r1, r2))/float64(maxLen)

	return max(wordScore*0.7+editScore*0.3, editScore)
}

// Levenshtein returns the edit distance between a and b in runes.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
