package driven

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// QueryFilter restricts a vector store query.
type QueryFilter struct {
	// ChannelID restricts results to chunks from one channel. Empty means all.
	ChannelID string
}

// VectorStore persists embedded chunks and answers nearest-neighbour queries.
//
// A store has one established embedding dimension, fixed by the first Add.
// Adds and queries with a different dimension must fail with
// domain.ErrDimensionMismatch rather than corrupt the collection.
type VectorStore interface {
	// Add persists chunks together with their embeddings.
	Add(ctx context.Context, chunks []*domain.Chunk) error

	// Query returns the k stored chunks nearest to the embedding, best first.
	// Fewer than k results is not an error.
	Query(ctx context.Context, embedding []float32, k int, filter QueryFilter) ([]*domain.ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Summary aggregates stored chunks per video for inspection.
	Summary(ctx context.Context) (*domain.IndexSummary, error)

	// Clear removes all stored chunks and resets the established dimension.
	Clear(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
