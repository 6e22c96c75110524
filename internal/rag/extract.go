package rag

import (
	"regexp"
	"strings"
)

const cannotFindAnswer = "I cannot find a specific answer to your question in the provided document. Please try rephrasing your question or ask about a different aspect of the document."

var (
	numberedItemRE = regexp.MustCompile(`^\d+\. `)
	letterItemRE   = regexp.MustCompile(`^[a-zA-Z]\. `)
	newlineRunRE   = regexp.MustCompile(`\n+`)
	wordRE         = regexp.MustCompile(`\w+`)
)

// extractDirectAnswer walks the extraction ladder over the retrieved context
// and always produces some answer; the caller decides whether it is good
// enough to return or whether to fall through to the model.
func extractDirectAnswer(question, context string) string {
	switch Classify(question) {
	case CategoryDefinition:
		if answer, ok := extractDefinition(question, context); ok {
			return answer
		}
	case CategoryEnumeration:
		if answer, ok := extractList(context); ok {
			return answer
		}
	}
	if answer, ok := extractBestSentences(question, context); ok {
		return answer
	}
	if answer, ok := extractMatchingChunk(question, context); ok {
		return answer
	}
	return cannotFindAnswer
}

// extractDefinition returns the first sentence that both uses definition
// phrasing and mentions a question word.
func extractDefinition(question, context string) (string, bool) {
	words := questionWords(question, 3)
	for _, sentence := range strings.Split(context, ".") {
		lower := strings.ToLower(sentence)
		if !strings.Contains(lower, "is a") &&
			!strings.Contains(lower, "refers to") &&
			!strings.Contains(lower, "defined as") {
			continue
		}
		if countMatches(words, lower) == 0 {
			continue
		}
		clean := strings.TrimSuffix(strings.TrimSpace(sentence), ".")
		return markerDocument + "\n\n" + clean + ".", true
	}
	return "", false
}

// extractList accumulates a numbered list and its sub-items. A non-empty line
// inside the list that is not itself an item is treated as a continuation of
// the previous item; the first blank line ends the list.
func extractList(context string) (string, bool) {
	var items []string
	inList := false
	for _, line := range strings.Split(context, "\n") {
		line = strings.TrimSpace(line)
		if numberedItemRE.MatchString(line) {
			inList = true
			items = append(items, line)
		} else if inList && (strings.HasPrefix(line, "- ") || letterItemRE.MatchString(line)) {
			items = append(items, line)
		} else if inList && line == "" {
			break
		} else if inList && len(items) > 0 {
			items[len(items)-1] += " " + line
		}
	}
	if len(items) == 0 {
		return "", false
	}
	return markerDocument + "\n\n" + strings.Join(items, "\n"), true
}

// extractBestSentences keeps every sentence tied at the maximum question-word
// match count, then joins the first two in document order.
func extractBestSentences(question, context string) (string, bool) {
	words := questionWords(question, 2)
	var best []string
	bestScore := 0
	for _, sentence := range strings.Split(context, ".") {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) <= 10 {
			continue
		}
		matches := countMatches(words, strings.ToLower(sentence))
		if matches == 0 {
			continue
		}
		if matches > bestScore {
			bestScore = matches
			best = []string{trimmed}
		} else if matches == bestScore {
			best = append(best, trimmed)
		}
	}
	if len(best) == 0 {
		return "", false
	}
	if len(best) > 2 {
		best = best[:2]
	}
	answer := collapseRepeatedWords(strings.Join(best, ". ") + ".")
	return markerDocument + "\n\n" + answer, true
}

// extractMatchingChunk returns the first retrieved chunk mentioning any
// question word, truncated to 300 characters.
func extractMatchingChunk(question, context string) (string, bool) {
	words := questionWords(question, 2)
	for _, chunk := range strings.Split(context, "\n\n") {
		if countMatches(words, strings.ToLower(chunk)) == 0 {
			continue
		}
		answer := strings.TrimSpace(chunk)
		if len(chunk) > 300 {
			answer = strings.TrimSpace(chunk[:300]) + "..."
		}
		answer = newlineRunRE.ReplaceAllString(answer, "\n")
		return markerDocument + "\n\n" + answer, true
	}
	return "", false
}

// collapseRepeatedWords drops the second word of an immediately repeated pair
// ("the the report" -> "the report"). Go's regexp has no backreferences, so
// this walks word matches instead of a \b(\w+)\s+\1\b replacement.
func collapseRepeatedWords(s string) string {
	locs := wordRE.FindAllStringIndex(s, -1)
	if len(locs) < 2 {
		return s
	}

	var b strings.Builder
	prevWord := ""
	prevEnd := -1
	written := 0
	for _, loc := range locs {
		word := s[loc[0]:loc[1]]
		if prevEnd >= 0 && word == prevWord && strings.TrimSpace(s[prevEnd:loc[0]]) == "" {
			// Skip the duplicate and the whitespace before it.
			written = loc[1]
			continue
		}
		b.WriteString(s[written:loc[1]])
		written = loc[1]
		prevWord = word
		prevEnd = loc[1]
	}
	b.WriteString(s[written:])
	return b.String()
}
