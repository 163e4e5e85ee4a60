package driving

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// IndexingService orchestrates the fetch → chunk → embed → store pipeline
// for a whole channel.
type IndexingService interface {
	// IndexChannel indexes a channel's videos. Videos without transcripts
	// are skipped and counted; a failure to resolve the channel is an error.
	IndexChannel(ctx context.Context, channelHandle string, opts domain.IndexOptions) (*domain.IndexingStats, error)

	// ClearIndex removes all stored chunks.
	ClearIndex(ctx context.Context) error

	// Summary reports what is currently indexed.
	Summary(ctx context.Context) (*domain.IndexSummary, error)
}
