package rag

import "strings"

// Category tags a question with the extraction heuristic that applies to it.
type Category int

const (
	// CategoryOther questions go straight to best-sentence selection.
	CategoryOther Category = iota
	// CategoryDefinition questions look for "X is a Y" style sentences.
	CategoryDefinition
	// CategoryEnumeration questions look for numbered lists.
	CategoryEnumeration
)

// Classify buckets a question by substring matching on its lowercased form.
// This is a deliberate heuristic, not language understanding: "what is"
// outranks the enumeration patterns when both appear.
func Classify(question string) Category {
	q := strings.ToLower(question)
	if strings.Contains(q, "what is") {
		return CategoryDefinition
	}
	if strings.Contains(q, "what are") || strings.Contains(q, "types of") ||
		strings.Contains(q, "3 types") || strings.Contains(q, "three types") {
		return CategoryEnumeration
	}
	return CategoryOther
}
