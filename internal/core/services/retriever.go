package services

import (
	"context"
	"fmt"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
	"github.com/cobalt-labs/tubechat-core/internal/runtime"
)

// Retriever embeds a question and looks up the nearest stored chunks.
type Retriever struct {
	store    driven.VectorStore
	services *runtime.Services
}

// NewRetriever creates a new Retriever.
// The embedding service is accessed dynamically via runtime.Services.
func NewRetriever(store driven.VectorStore, services *runtime.Services) *Retriever {
	return &Retriever{
		store:    store,
		services: services,
	}
}

// Retrieve returns the top-k chunks most similar to the question, best first.
// An empty store yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, opts domain.AskOptions) ([]*domain.ScoredChunk, error) {
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultAskOptions().TopK
	}

	embedder := r.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("embedding service not configured: %w", domain.ErrServiceUnavailable)
	}

	embedding, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Query(ctx, embedding, opts.TopK, driven.QueryFilter{ChannelID: opts.ChannelID})
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	return results, nil
}
