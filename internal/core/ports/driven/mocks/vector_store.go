package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// MockVectorStore is an in-memory VectorStore for testing.
// It enforces the same dimension contract as the real adapters.
type MockVectorStore struct {
	mu        sync.Mutex
	chunks    []*domain.Chunk
	dimension int
	model     string
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{}
}

func (m *MockVectorStore) Add(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chunks {
		if m.dimension == 0 {
			m.dimension = len(c.Embedding)
		} else if len(c.Embedding) != m.dimension {
			return domain.ErrDimensionMismatch
		}
		m.chunks = append(m.chunks, c)
	}
	return nil
}

func (m *MockVectorStore) Query(ctx context.Context, embedding []float32, k int, filter driven.QueryFilter) ([]*domain.ScoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dimension != 0 && len(embedding) != m.dimension {
		return nil, domain.ErrDimensionMismatch
	}

	var results []*domain.ScoredChunk
	for _, c := range m.chunks {
		if filter.ChannelID != "" && c.ChannelID != filter.ChannelID {
			continue
		}
		results = append(results, &domain.ScoredChunk{
			Chunk: c,
			Score: cosine(embedding, c.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MockVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *MockVectorStore) Summary(ctx context.Context) (*domain.IndexSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byVideo := make(map[string]*domain.VideoSummary)
	var order []string
	for _, c := range m.chunks {
		vs, ok := byVideo[c.VideoID]
		if !ok {
			vs = &domain.VideoSummary{
				VideoID:     c.VideoID,
				VideoTitle:  c.VideoTitle,
				ChannelID:   c.ChannelID,
				ChannelName: c.ChannelName,
			}
			byVideo[c.VideoID] = vs
			order = append(order, c.VideoID)
		}
		vs.ChunkCount++
	}

	summary := &domain.IndexSummary{
		TotalChunks: len(m.chunks),
		Dimension:   m.dimension,
		Model:       m.model,
	}
	for _, id := range order {
		summary.Videos = append(summary.Videos, *byVideo[id])
	}
	return summary, nil
}

func (m *MockVectorStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.dimension = 0
	m.model = ""
	return nil
}

func (m *MockVectorStore) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
