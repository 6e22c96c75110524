package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the window width in bytes.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many bytes consecutive chunks share.
	DefaultOverlap = 200

	// sentenceLookback bounds the backward search for a sentence boundary.
	sentenceLookback = 100
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Split normalizes whitespace in text and slides a window of chunkSize across
// it with step chunkSize-overlap, shrinking each non-final window to end just
// after a sentence-terminating period when one is found past the window's
// midpoint. Chunk order matches document order.
//
// chunkSize and overlap are byte counts, not rune counts, so a window boundary
// can land inside a multibyte rune.
//
// overlap >= chunkSize would never advance the window, so it is rejected
// instead of silently clamped.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	}

	text = strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	if text == "" {
		return nil, nil
	}
	if len(text) <= chunkSize {
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end < len(text) {
			// Prefer ending on a sentence boundary within the last
			// sentenceLookback bytes of the window.
			searchStart := start + chunkSize - sentenceLookback
			if searchStart < start {
				searchStart = start
			}
			if idx := strings.LastIndex(text[searchStart:end], "."); idx >= 0 {
				sentenceEnd := searchStart + idx
				if sentenceEnd > start+chunkSize/2 {
					end = sentenceEnd + 1
				}
			}
		}

		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		chunk := strings.TrimSpace(text[start:sliceEnd])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The window may have been shrunk to a sentence boundary close enough
		// to start that subtracting the overlap would stall; skip the overlap
		// in that case rather than loop forever.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks, nil
}
