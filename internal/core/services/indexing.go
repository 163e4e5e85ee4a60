package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driving"
	"github.com/cobalt-labs/tubechat-core/internal/runtime"
)

// Ensure indexingService implements IndexingService
var _ driving.IndexingService = (*indexingService)(nil)

// indexingService implements the channel indexing pipeline:
//  1. Resolve handle → channel ID
//  2. Get channel metadata
//  3. List uploaded videos (capped at MaxVideos)
//  4. Per video: fetch transcript → chunk → embed → store
//
// Per-video failures (no captions, fetch errors) are counted as skips and
// never abort the run. A dimension mismatch in the vector store does abort:
// it means the embedding model changed and the stored index must be cleared.
type indexingService struct {
	channels    driven.ChannelClient
	transcripts driven.TranscriptFetcher
	store       driven.VectorStore
	pipeline    driven.PostProcessorPipeline
	services    *runtime.Services
	logger      *slog.Logger
}

// IndexingServiceConfig holds dependencies for the indexing service.
type IndexingServiceConfig struct {
	Channels    driven.ChannelClient
	Transcripts driven.TranscriptFetcher
	Store       driven.VectorStore
	Pipeline    driven.PostProcessorPipeline
	Services    *runtime.Services
	Logger      *slog.Logger
}

// NewIndexingService creates a new IndexingService.
// The embedding service is accessed dynamically via runtime.Services.
func NewIndexingService(cfg IndexingServiceConfig) driving.IndexingService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &indexingService{
		channels:    cfg.Channels,
		transcripts: cfg.Transcripts,
		store:       cfg.Store,
		pipeline:    cfg.Pipeline,
		services:    cfg.Services,
		logger:      logger,
	}
}

// IndexChannel indexes a channel's videos.
func (s *indexingService) IndexChannel(ctx context.Context, channelHandle string, opts domain.IndexOptions) (*domain.IndexingStats, error) {
	if channelHandle == "" {
		return nil, domain.ErrInvalidInput
	}
	if opts.MaxVideos <= 0 {
		opts.MaxVideos = domain.DefaultIndexOptions().MaxVideos
	}

	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("embedding service not configured: %w", domain.ErrServiceUnavailable)
	}

	start := time.Now()
	s.logger.Info("starting channel index", "channel_handle", channelHandle, "max_videos", opts.MaxVideos)

	channelID, err := s.channels.ResolveHandle(ctx, channelHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %q: %w", channelHandle, err)
	}

	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}

	if opts.Clear {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear index: %w", err)
		}
		s.logger.Info("cleared existing index", "channel_id", channelID)
	}

	videos, err := s.channels.ListVideos(ctx, channelID, opts.MaxVideos)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for channel %s: %w", channelID, err)
	}

	stats := &domain.IndexingStats{
		ChannelID:   channel.ID,
		ChannelName: channel.Title,
	}

	for _, video := range videos {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		chunks, err := s.indexVideo(ctx, embedder, channel, video)
		if err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				return stats, err
			}
			if !errors.Is(err, domain.ErrTranscriptUnavailable) {
				s.logger.Warn("skipping video", "video_id", video.ID, "error", err)
			}
			stats.VideosSkipped++
			continue
		}

		stats.VideosIndexed++
		stats.TotalChunks += chunks
	}

	s.logger.Info("channel index completed",
		"channel_id", channel.ID,
		"channel_title", channel.Title,
		"videos_indexed", stats.VideosIndexed,
		"videos_skipped", stats.VideosSkipped,
		"total_chunks", stats.TotalChunks,
		"duration_seconds", time.Since(start).Seconds(),
	)

	return stats, nil
}

// indexVideo processes a single video and returns how many chunks it stored.
func (s *indexingService) indexVideo(
	ctx context.Context,
	embedder driven.EmbeddingService,
	channel *domain.Channel,
	video *domain.Video,
) (int, error) {
	transcript, err := s.transcripts.Fetch(ctx, video.ID)
	if err != nil {
		return 0, err
	}
	if transcript.Empty() {
		return 0, domain.ErrTranscriptUnavailable
	}

	pieces := s.pipeline.Process(transcript.Text)
	if len(pieces) == 0 {
		return 0, domain.ErrTranscriptUnavailable
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Content
	}

	embeddings, err := embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(pieces) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(pieces))
	}

	now := time.Now()
	chunks := make([]*domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &domain.Chunk{
			ID:          uuid.NewString(),
			VideoID:     video.ID,
			VideoTitle:  video.Title,
			ChannelID:   channel.ID,
			ChannelName: channel.Title,
			PublishedAt: video.PublishedAt,
			Content:     piece.Content,
			Embedding:   embeddings[i],
			Position:    piece.Position,
			StartChar:   piece.StartOffset,
			EndChar:     piece.EndOffset,
			CreatedAt:   now,
		}
	}

	if err := s.store.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	return len(chunks), nil
}

// ClearIndex removes all stored chunks.
func (s *indexingService) ClearIndex(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	s.logger.Info("index cleared")
	return nil
}

// Summary reports what is currently indexed.
func (s *indexingService) Summary(ctx context.Context) (*domain.IndexSummary, error) {
	return s.store.Summary(ctx)
}
