package driving

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// ChatService answers questions about indexed content with source citations.
type ChatService interface {
	// Ask retrieves relevant chunks for the question and generates an
	// answer grounded on them. When retrieval yields nothing the canned
	// "no relevant content" answer is returned without calling the LLM.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.ChatResult, error)
}
