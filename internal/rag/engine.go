package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nageshgg/DOC-QUERY/internal/llm"
)

// ErrNoDocument is returned when a question arrives before any document has
// been processed.
var ErrNoDocument = errors.New("no document loaded, please upload a document first")

// Answer source markers. Every answer carries exactly one of these so the
// caller can tell which stage produced it.
const (
	markerDocument       = "[Note: Information found in document.]"
	markerModelContext   = "[Note: Answer generated using document context and AI model.]"
	markerModelKnowledge = "[Note: Information not found in document. Using AI model knowledge.]"
	markerNoModel        = "[Note: Information not found in document. Model not available for fallback response.]"
	markerModelFailed    = "[Note: Information not found in document. Model could not generate a helpful response.]"
	markerModelError     = "[Note: Information not found in document. Model error occurred.]"
)

const defaultTopK = 5

// Generator is the model binding the engine degrades to when text extraction
// fails. *llm.Binding satisfies it.
type Generator interface {
	Loaded() bool
	Reason() string
	Generate(ctx context.Context, prompt string, cfg llm.ModelConfig) (string, error)
}

// Engine answers questions against one bound document. A new upload builds a
// new Engine; there is no shared mutable state between instances.
type Engine struct {
	chunks    []string
	modelName string
	generator Generator
	topK      int
}

// NewEngine binds the chunk sequence and model for a processed document.
func NewEngine(chunks []string, modelName string, generator Generator, topK int) *Engine {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Engine{
		chunks:    chunks,
		modelName: modelName,
		generator: generator,
		topK:      topK,
	}
}

// ChunkCount reports how many chunks are bound.
func (e *Engine) ChunkCount() int {
	return len(e.chunks)
}

// Answer runs the retrieval and fallback ladder for one question. It fails
// only on the no-document precondition; every later stage degrades to the
// next one instead of surfacing an error, so the caller always gets an answer.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	if len(e.chunks) == 0 {
		return "", ErrNoDocument
	}

	relevant := retrieve(question, e.chunks, e.topK)
	if len(relevant) == 0 {
		log.Debug().Str("question", question).Msg("no relevant chunks found in document")
		return e.answerFromModelKnowledge(ctx, question), nil
	}

	docContext := strings.Join(relevant, "\n\n")
	direct := extractDirectAnswer(question, docContext)
	if acceptableExtraction(direct) {
		return direct, nil
	}

	if e.generator.Loaded() {
		answer, err := e.generator.Generate(ctx, documentPrompt(question, relevant), llm.ConfigFor(e.modelName))
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("model generation with document context failed")
		case acceptableGeneration(answer):
			return markerModelContext + "\n\n" + answer, nil
		}
	}

	return e.answerFromModelKnowledge(ctx, question), nil
}

// answerFromModelKnowledge is the last rung: generation without document
// context, with fixed conservative sampling parameters. It never fails; when
// the model is unavailable or unhelpful it reports that in the answer itself.
func (e *Engine) answerFromModelKnowledge(ctx context.Context, question string) string {
	if !e.generator.Loaded() {
		log.Debug().Str("reason", e.generator.Reason()).Msg("model fallback unavailable")
		return markerNoModel + "\n\n" + fmt.Sprintf(
			"I cannot provide additional information about '%s' as the language model is not loaded. Please try asking about information that might be in the uploaded document.",
			question)
	}

	answer, err := e.generator.Generate(ctx, knowledgePrompt(question), llm.ModelConfig{
		MaxTokens:         100,
		Temperature:       0.6,
		TopP:              0.9,
		RepetitionPenalty: 1.2,
	})
	if err != nil {
		log.Warn().Err(err).Msg("model-only generation failed")
		return markerModelError + "\n\n" + fmt.Sprintf(
			"I cannot provide additional information about '%s' due to a model error: %v", question, err)
	}
	if !acceptableGeneration(answer) {
		return markerModelFailed + "\n\n" + fmt.Sprintf(
			"I cannot provide additional information about '%s' as it was not found in the document and the AI model could not generate a helpful response.",
			question)
	}
	return markerModelKnowledge + "\n\n" + answer
}

// acceptableExtraction judges whether a ladder result is worth returning
// without consulting the model.
func acceptableExtraction(answer string) bool {
	return len(answer) > 20 && !strings.Contains(strings.ToLower(answer), "cannot find")
}

// acceptableGeneration filters out empty and sentinel model outputs.
func acceptableGeneration(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) <= 10 {
		return false
	}
	switch strings.ToLower(trimmed) {
	case "", "none", "n/a", "i cannot find":
		return false
	}
	return true
}

func documentPrompt(question string, chunks []string) string {
	return fmt.Sprintf(`Based on the following document content, please answer the question clearly and accurately. Use only the information provided in the document.

Document Content:
%s

Question: %s

Answer:`, strings.Join(chunks, "\n\n"), question)
}

func knowledgePrompt(question string) string {
	return fmt.Sprintf(`The following question cannot be answered from the provided document content. Please provide a helpful answer using your general knowledge about the topic.

Question: %s

Answer:`, question)
}
