package llm

import (
	"github.com/nageshgg/DOC-QUERY/internal/models"
)

// DefaultModel is used when the upload form omits model_name and as the config
// fallback for unrecognized names.
const DefaultModel = "gpt2"

// ModelConfig holds the generation parameters for one allow-listed model.
type ModelConfig struct {
	PromptFormat      string
	MaxTokens         int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
}

// Only small causal models are allow-listed; widening this is a deployment
// decision, not application behavior.
var modelConfigs = map[string]ModelConfig{
	"gpt2": {
		PromptFormat:      "simple",
		MaxTokens:         100,
		Temperature:       0.6,
		TopP:              0.9,
		RepetitionPenalty: 1.2,
	},
	"distilgpt2": {
		PromptFormat:      "simple",
		MaxTokens:         80,
		Temperature:       0.5,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
	},
	"microsoft/DialoGPT-small": {
		PromptFormat:      "simple",
		MaxTokens:         100,
		Temperature:       0.5,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
	},
}

// IsAllowed reports whether name is on the model allow-list.
func IsAllowed(name string) bool {
	_, ok := modelConfigs[name]
	return ok
}

// ConfigFor returns the generation parameters for name, defaulting to the
// DefaultModel entry when the name is unrecognized. Upload-time validation
// should already have rejected unknown names.
func ConfigFor(name string) ModelConfig {
	if cfg, ok := modelConfigs[name]; ok {
		return cfg
	}
	return modelConfigs[DefaultModel]
}

// AllowedModels lists the allow-listed model names in catalog order.
func AllowedModels() []string {
	names := make([]string, 0, len(catalog))
	for _, m := range catalog {
		names = append(names, m.Name)
	}
	return names
}

var catalog = []models.ModelInfo{
	{
		Name:        "gpt2",
		Description: "GPT-2 - Fast and stable, safe for macOS",
		Size:        "124M parameters",
	},
	{
		Name:        "distilgpt2",
		Description: "DistilGPT-2 - Lightweight and fast, safe for macOS",
		Size:        "82M parameters",
	},
	{
		Name:        "microsoft/DialoGPT-small",
		Description: "DialoGPT Small - Conversational model, safe for macOS",
		Size:        "117M parameters",
	},
}

// Catalog returns the static model descriptions served by /models.
func Catalog() []models.ModelInfo {
	return catalog
}
