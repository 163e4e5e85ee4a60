package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven/mocks"
)

func TestRetriever_Retrieve(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "alpha", "beta", "gamma", "delta")

	retriever := NewRetriever(store, createTestServices(mocks.NewMockEmbeddingService()))

	results, err := retriever.Retrieve(context.Background(), "alpha", domain.AskOptions{TopK: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Identical text embeds identically, so the exact match ranks first
	if results[0].Chunk.Content != "alpha" {
		t.Errorf("expected exact match first, got %q", results[0].Chunk.Content)
	}
	if results[0].Score < results[1].Score {
		t.Error("expected results ordered best first")
	}
}

func TestRetriever_Retrieve_KLargerThanStore(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "only", "three", "chunks")

	retriever := NewRetriever(store, createTestServices(mocks.NewMockEmbeddingService()))

	results, err := retriever.Retrieve(context.Background(), "anything", domain.AskOptions{TopK: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected all 3 stored chunks, got %d", len(results))
	}
}

func TestRetriever_Retrieve_DefaultTopK(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "a", "b", "c", "d", "e", "f", "g")

	retriever := NewRetriever(store, createTestServices(mocks.NewMockEmbeddingService()))

	results, err := retriever.Retrieve(context.Background(), "a", domain.AskOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != domain.DefaultAskOptions().TopK {
		t.Errorf("expected default top-k results, got %d", len(results))
	}
}

func TestRetriever_Retrieve_NoEmbeddingService(t *testing.T) {
	retriever := NewRetriever(mocks.NewMockVectorStore(), createTestServices(nil))

	_, err := retriever.Retrieve(context.Background(), "question", domain.AskOptions{})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestRetriever_Retrieve_EmbedError(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.FailNext()

	retriever := NewRetriever(mocks.NewMockVectorStore(), createTestServices(embedder))

	_, err := retriever.Retrieve(context.Background(), "question", domain.AskOptions{})
	if err == nil {
		t.Error("expected error from failing embedder")
	}
}
