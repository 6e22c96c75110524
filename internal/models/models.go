package models

// ConversationEntry is one question/answer exchange kept for the /history endpoint.
// History is observational only; it is never fed back into prompts.
type ConversationEntry struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// ModelInfo describes one allow-listed model for the /models endpoint.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        string `json:"size"`
}
