package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nageshgg/DOC-QUERY/internal/llm"
)

type fakeGenerator struct {
	loaded  bool
	reason  string
	answer  string
	err     error
	prompts []string
	lastCfg llm.ModelConfig
}

func (f *fakeGenerator) Loaded() bool   { return f.loaded }
func (f *fakeGenerator) Reason() string { return f.reason }

func (f *fakeGenerator) Generate(_ context.Context, prompt string, cfg llm.ModelConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.lastCfg = cfg
	return f.answer, f.err
}

func TestAnswer_NoDocumentPrecondition(t *testing.T) {
	engine := NewEngine(nil, "gpt2", &fakeGenerator{}, 5)
	if _, err := engine.Answer(context.Background(), "anything"); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestAnswer_ExtractionWinsOverGeneration(t *testing.T) {
	gen := &fakeGenerator{loaded: true, answer: "a generated answer"}
	chunks := []string{"Cats are mammals. Dogs are mammals too. Birds lay eggs."}
	engine := NewEngine(chunks, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "What is a mammal?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerDocument) {
		t.Fatalf("expected document marker, got %q", answer)
	}
	if !strings.Contains(answer, "mammals") {
		t.Fatalf("expected a sentence about mammals, got %q", answer)
	}
	if len(gen.prompts) != 0 {
		t.Fatalf("expected no model call when extraction succeeds, got %d", len(gen.prompts))
	}
}

func TestAnswer_ContextGenerationWhenExtractionRejected(t *testing.T) {
	// The best sentence here contains "cannot find", which the extraction
	// acceptance check rejects, so the engine must fall through to generation
	// with document context.
	gen := &fakeGenerator{loaded: true, answer: "The fossils were never recovered from the site."}
	chunks := []string{"Researchers cannot find the missing link fossils in this region."}
	engine := NewEngine(chunks, "distilgpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "where are the fossils")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerModelContext) {
		t.Fatalf("expected AI-with-context marker, got %q", answer)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Document Content") ||
		!strings.Contains(gen.prompts[0], chunks[0]) {
		t.Fatalf("expected the document prompt with the retrieved chunk, got %q", gen.prompts[0])
	}
	// Stage 4 uses the bound model's own parameters, not the fixed stage-5 set.
	if gen.lastCfg.MaxTokens != 80 || gen.lastCfg.Temperature != 0.5 ||
		gen.lastCfg.TopP != 0.9 || gen.lastCfg.RepetitionPenalty != 1.1 {
		t.Fatalf("expected the distilgpt2 config, got %+v", gen.lastCfg)
	}
}

func TestAnswer_RejectedContextGenerationFallsToModelOnly(t *testing.T) {
	gen := &fakeGenerator{loaded: true, answer: "n/a"}
	chunks := []string{"Researchers cannot find the missing link fossils in this region."}
	engine := NewEngine(chunks, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "where are the fossils")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerModelFailed) {
		t.Fatalf("expected could-not-generate marker, got %q", answer)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("expected context then model-only generation, got %d calls", len(gen.prompts))
	}
	if strings.Contains(gen.prompts[1], "Document Content") {
		t.Fatalf("expected the second call to use the model-only prompt, got %q", gen.prompts[1])
	}
}

func TestAnswer_EmptyRetrievalSkipsToModelOnly(t *testing.T) {
	gen := &fakeGenerator{loaded: true, answer: "Quasars are luminous galactic cores."}
	engine := NewEngine([]string{"a document entirely about gardening"}, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "explain quasars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerModelKnowledge) {
		t.Fatalf("expected model-knowledge marker, got %q", answer)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(gen.prompts))
	}
	// Stage 5 uses the general-knowledge prompt, not the document prompt.
	if strings.Contains(gen.prompts[0], "Document Content") {
		t.Fatalf("expected the model-only prompt, got %q", gen.prompts[0])
	}
	if gen.lastCfg.MaxTokens != 100 || gen.lastCfg.Temperature != 0.6 ||
		gen.lastCfg.TopP != 0.9 || gen.lastCfg.RepetitionPenalty != 1.2 {
		t.Fatalf("expected fixed model-only parameters, got %+v", gen.lastCfg)
	}
}

func TestAnswer_NoMatchesAndNoModel(t *testing.T) {
	gen := &fakeGenerator{loaded: false, reason: "server unreachable"}
	engine := NewEngine([]string{"a document entirely about gardening"}, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "explain quasars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerNoModel) {
		t.Fatalf("expected no-model marker, got %q", answer)
	}
	if !strings.Contains(answer, "explain quasars") {
		t.Fatalf("expected the question embedded in the answer, got %q", answer)
	}
}

func TestAnswer_ModelErrorDegradesToMessage(t *testing.T) {
	gen := &fakeGenerator{loaded: true, err: errors.New("connection reset")}
	engine := NewEngine([]string{"a document entirely about gardening"}, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "explain quasars")
	if err != nil {
		t.Fatalf("generation errors must not propagate, got %v", err)
	}
	if !strings.HasPrefix(answer, markerModelError) {
		t.Fatalf("expected model-error marker, got %q", answer)
	}
}

func TestAnswer_UnhelpfulGenerationDegradesToMessage(t *testing.T) {
	gen := &fakeGenerator{loaded: true, answer: "n/a"}
	engine := NewEngine([]string{"a document entirely about gardening"}, "gpt2", gen, 5)

	answer, err := engine.Answer(context.Background(), "explain quasars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(answer, markerModelFailed) {
		t.Fatalf("expected could-not-generate marker, got %q", answer)
	}
}

func TestAcceptableGeneration(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"", false},
		{"short", false},
		{"   N/A   ", false},
		{"I cannot find", false},
		{"Quasars are luminous galactic cores.", true},
	}
	for _, tc := range cases {
		if got := acceptableGeneration(tc.answer); got != tc.want {
			t.Errorf("acceptableGeneration(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestDocumentPrompt_EmbedsContextAndQuestion(t *testing.T) {
	prompt := documentPrompt("what is a turbine", []string{"chunk one", "chunk two"})
	if !strings.Contains(prompt, "chunk one\n\nchunk two") {
		t.Fatalf("expected chunks joined by blank lines, got %q", prompt)
	}
	if !strings.Contains(prompt, "Question: what is a turbine") {
		t.Fatalf("expected the question, got %q", prompt)
	}
	if !strings.Contains(prompt, "Use only the information provided in the document") {
		t.Fatalf("expected the document-only instruction, got %q", prompt)
	}
}
