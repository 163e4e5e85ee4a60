package driven

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// ChannelClient wraps the video platform's metadata API.
type ChannelClient interface {
	// ResolveHandle resolves a channel handle (e.g. @veritasium) or raw
	// channel ID to a channel ID. Returns domain.ErrChannelNotFound when
	// the handle matches nothing.
	ResolveHandle(ctx context.Context, handle string) (string, error)

	// GetChannel returns channel metadata, including the uploads playlist.
	GetChannel(ctx context.Context, channelID string) (*domain.Channel, error)

	// ListVideos lists the channel's uploaded videos, newest first,
	// capped at maxResults.
	ListVideos(ctx context.Context, channelID string, maxResults int) ([]*domain.Video, error)
}

// TranscriptFetcher extracts the caption text of a single video.
type TranscriptFetcher interface {
	// Fetch returns the video's transcript. Returns
	// domain.ErrTranscriptUnavailable when the video has no usable captions.
	Fetch(ctx context.Context, videoID string) (*domain.Transcript, error)
}
