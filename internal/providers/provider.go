package providers

import (
	"context"
)

// GenerateRequest contains the data sent to the model for a single completion.
type GenerateRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// GenerateResponse contains the raw completion returned by the model.
type GenerateResponse struct {
	Text         string
	PromptTokens int
	EvalTokens   int
}

// Generator is the abstraction the review relay depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Model() string
}
