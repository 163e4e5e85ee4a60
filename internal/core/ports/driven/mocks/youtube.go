package mocks

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// MockChannelClient is a mock implementation of ChannelClient for testing
type MockChannelClient struct {
	// Channels maps handle → channel
	Channels map[string]*domain.Channel

	// Videos maps channel ID → videos, newest first
	Videos map[string][]*domain.Video

	// ResolveErr overrides handle resolution when set
	ResolveErr error
}

// NewMockChannelClient creates a new MockChannelClient
func NewMockChannelClient() *MockChannelClient {
	return &MockChannelClient{
		Channels: make(map[string]*domain.Channel),
		Videos:   make(map[string][]*domain.Video),
	}
}

// AddChannel registers a channel and its videos.
func (m *MockChannelClient) AddChannel(ch *domain.Channel, videos ...*domain.Video) {
	m.Channels[ch.Handle] = ch
	m.Videos[ch.ID] = videos
}

func (m *MockChannelClient) ResolveHandle(ctx context.Context, handle string) (string, error) {
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	if ch, ok := m.Channels[handle]; ok {
		return ch.ID, nil
	}
	return "", domain.ErrChannelNotFound
}

func (m *MockChannelClient) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	for _, ch := range m.Channels {
		if ch.ID == channelID {
			return ch, nil
		}
	}
	return nil, domain.ErrChannelNotFound
}

func (m *MockChannelClient) ListVideos(ctx context.Context, channelID string, maxResults int) ([]*domain.Video, error) {
	videos := m.Videos[channelID]
	if maxResults > 0 && len(videos) > maxResults {
		videos = videos[:maxResults]
	}
	return videos, nil
}

// MockTranscriptFetcher is a mock implementation of TranscriptFetcher for testing
type MockTranscriptFetcher struct {
	// Transcripts maps video ID → transcript text. Missing entries behave
	// as videos without captions.
	Transcripts map[string]string

	// FetchCalls records the video IDs requested, in order
	FetchCalls []string
}

// NewMockTranscriptFetcher creates a new MockTranscriptFetcher
func NewMockTranscriptFetcher() *MockTranscriptFetcher {
	return &MockTranscriptFetcher{Transcripts: make(map[string]string)}
}

func (m *MockTranscriptFetcher) Fetch(ctx context.Context, videoID string) (*domain.Transcript, error) {
	m.FetchCalls = append(m.FetchCalls, videoID)
	text, ok := m.Transcripts[videoID]
	if !ok || text == "" {
		return nil, domain.ErrTranscriptUnavailable
	}
	return &domain.Transcript{VideoID: videoID, Language: "en", Text: text}, nil
}
