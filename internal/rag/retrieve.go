package rag

import (
	"sort"
	"strings"
)

// questionWords returns the lowercased question words longer than minLen
// characters. Punctuation is not part of a word, so "mammal?" yields "mammal";
// short words are mostly stopwords and would match everywhere.
func questionWords(question string, minLen int) []string {
	var words []string
	for _, w := range wordRE.FindAllString(strings.ToLower(question), -1) {
		if len(w) > minLen {
			words = append(words, w)
		}
	}
	return words
}

// countMatches counts how many of the words appear in text. Each word counts
// once no matter how often it occurs; text must already be lowercased.
func countMatches(words []string, text string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// retrieve scores every chunk by distinct question-word containment and returns
// the topK best matches. The sort is stable so tied chunks keep document order.
func retrieve(question string, chunks []string, topK int) []string {
	words := questionWords(question, 2)

	type scoredChunk struct {
		chunk   string
		matches int
	}
	var hits []scoredChunk
	for _, chunk := range chunks {
		if m := countMatches(words, strings.ToLower(chunk)); m > 0 {
			hits = append(hits, scoredChunk{chunk: chunk, matches: m})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].matches > hits[j].matches
	})

	if topK > len(hits) {
		topK = len(hits)
	}
	relevant := make([]string, 0, topK)
	for _, h := range hits[:topK] {
		relevant = append(relevant, h.chunk)
	}
	return relevant
}
