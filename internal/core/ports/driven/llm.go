package driven

import (
	"context"
)

// LLMService generates grounded answers from retrieved context passages.
type LLMService interface {
	// Answer generates an answer to the question conditioned on the given
	// context passages, in retrieval order.
	Answer(ctx context.Context, question string, contexts []string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
