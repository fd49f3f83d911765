package intent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sant0-9/bookpal/internal/llm"
)

//go:embed classify.md
var classifyPrompt string

// Resolver turns one utterance into an ordered sequence of intents. The
// model-backed and heuristic implementations are interchangeable; callers
// that use the model path fall back to Heuristic when Resolve errors.
type Resolver interface {
	Resolve(ctx context.Context, utterance string) ([]Intent, error)
}

var (
	_ Resolver = (*ModelResolver)(nil)
	_ Resolver = Heuristic{}
)

// ModelResolver classifies utterances with an LLM. The call is a single
// attempt with near-deterministic sampling; no retries. Any transport
// failure or malformed output is returned as an error for the caller to
// fall back on.
type ModelResolver struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// NewModelResolver creates a model-backed resolver. A nil logger is fine.
func NewModelResolver(provider llm.Provider, model string, logger *zap.Logger) *ModelResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelResolver{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

func (r *ModelResolver) Resolve(ctx context.Context, utterance string) ([]Intent, error) {
	resp, err := r.provider.Complete(ctx, &llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: "system", Content: strings.TrimSpace(classifyPrompt)},
			{Role: "user", Content: "Message: " + utterance + "\nOutput:"},
		},
		MaxTokens:   400,
		Temperature: 0.1,
		Stop:        []string{"Message:", "Output:"},
	})
	if err != nil {
		return nil, fmt.Errorf("classify utterance: %w", err)
	}

	intents, err := ExtractIntents(resp.Content)
	if err != nil {
		r.logger.Warn("rejecting model output",
			zap.String("provider", r.provider.Name()),
			zap.Error(err))
		return nil, err
	}

	return Correct(utterance, intents), nil
}
