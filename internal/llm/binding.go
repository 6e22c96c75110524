package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const pingTimeout = 5 * time.Second

// Binding is the answer engine's view of the fallback language model. It is
// either loaded or unavailable with a recorded reason; call sites branch on
// Loaded instead of nil-checking a model pointer.
type Binding struct {
	model  llms.Model
	name   string
	reason string
}

// Load binds modelName on the Ollama-compatible server at baseURL. Any failure
// degrades to an unavailable binding rather than an error: the upload still
// succeeds with text-based search only.
func Load(ctx context.Context, baseURL, modelName string) *Binding {
	if !IsAllowed(modelName) {
		log.Warn().Str("model", modelName).Msg("model not in safe list, using text-based search only")
		return &Binding{name: modelName, reason: fmt.Sprintf("model %s not in safe list", modelName)}
	}

	if err := ping(ctx, baseURL); err != nil {
		log.Warn().Err(err).Str("model", modelName).Msg("could not reach model server, fallback responses disabled")
		return &Binding{name: modelName, reason: err.Error()}
	}

	model, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(modelName),
	)
	if err != nil {
		log.Warn().Err(err).Str("model", modelName).Msg("could not load model, fallback responses disabled")
		return &Binding{name: modelName, reason: err.Error()}
	}

	log.Info().Str("model", modelName).Msg("model loaded for fallback responses")
	return &Binding{model: model, name: modelName}
}

// ping checks that the model server is answering before committing to it.
func ping(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned %s", resp.Status)
	}
	return nil
}

// Loaded reports whether generation is available.
func (b *Binding) Loaded() bool {
	return b != nil && b.model != nil
}

// Reason explains why the binding is unavailable. Empty when loaded.
func (b *Binding) Reason() string {
	if b == nil {
		return "no model bound"
	}
	return b.reason
}

// Name returns the bound model name even when loading failed.
func (b *Binding) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Generate runs a single sampled completion with the given parameters and
// strips any prompt echo from the decoded output.
func (b *Binding) Generate(ctx context.Context, prompt string, cfg ModelConfig) (string, error) {
	if !b.Loaded() {
		return "", fmt.Errorf("model not loaded: %s", b.Reason())
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := b.model.GenerateContent(ctx, content,
		llms.WithMaxTokens(cfg.MaxTokens),
		llms.WithTemperature(cfg.Temperature),
		llms.WithTopP(cfg.TopP),
		llms.WithRepetitionPenalty(cfg.RepetitionPenalty),
	)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	answer := res.Choices[0].Content
	if strings.HasPrefix(answer, prompt) {
		answer = answer[len(prompt):]
	}
	return strings.TrimSpace(answer), nil
}
