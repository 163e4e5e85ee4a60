package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven/mocks"
	"github.com/cobalt-labs/tubechat-core/internal/runtime"
)

func newTestChat(store *mocks.MockVectorStore) (*mocks.MockEmbeddingService, *mocks.MockLLMService, *runtime.Services, *chatService) {
	embedder := mocks.NewMockEmbeddingService()
	llm := mocks.NewMockLLMService()

	services := createTestServices(embedder)
	services.SetLLMService(llm)

	retriever := NewRetriever(store, services)
	svc := NewChatService(retriever, services, nil).(*chatService)
	return embedder, llm, services, svc
}

// seedChunks stores embedded chunks for the given texts.
func seedChunks(t *testing.T, store *mocks.MockVectorStore, channelID string, texts ...string) {
	t.Helper()
	embedder := mocks.NewMockEmbeddingService()

	for i, text := range texts {
		embedding, err := embedder.EmbedQuery(context.Background(), text)
		if err != nil {
			t.Fatalf("embed failed: %v", err)
		}
		chunk := &domain.Chunk{
			ID:          domain.GenerateID(),
			VideoID:     "vid-1",
			VideoTitle:  "Test Video",
			ChannelID:   channelID,
			ChannelName: "Test Channel",
			Content:     text,
			Embedding:   embedding,
			Position:    i,
		}
		if err := store.Add(context.Background(), []*domain.Chunk{chunk}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
}

func TestChatService_Ask(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1",
		"gravity bends light around massive objects",
		"the speed of light is constant",
		"entropy always increases",
	)

	embedder, llm, _, svc := newTestChat(store)
	llm.FixedAnswer = "Light bends because spacetime curves."

	result, err := svc.Ask(context.Background(), "why does light bend?", domain.AskOptions{TopK: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "Light bends because spacetime curves." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if !result.Grounded {
		t.Error("expected grounded result")
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	if result.Sources[0].Score < result.Sources[1].Score {
		t.Error("expected sources ordered by score, best first")
	}
	if embedder.QueryCalls != 1 {
		t.Errorf("expected 1 query embedding, got %d", embedder.QueryCalls)
	}
	if llm.AnswerCalls != 1 {
		t.Errorf("expected 1 llm call, got %d", llm.AnswerCalls)
	}

	// Context passages carry numbered source headers in retrieval order
	if len(llm.LastContexts) != 2 {
		t.Fatalf("expected 2 context passages, got %d", len(llm.LastContexts))
	}
	if !strings.HasPrefix(llm.LastContexts[0], "[Source 1] Video: Test Video") {
		t.Errorf("unexpected first context passage: %q", llm.LastContexts[0])
	}
	if !strings.HasPrefix(llm.LastContexts[1], "[Source 2]") {
		t.Errorf("unexpected second context passage: %q", llm.LastContexts[1])
	}
}

func TestChatService_Ask_EmptyStore(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedder, llm, _, svc := newTestChat(store)

	result, err := svc.Ask(context.Background(), "anything at all?", domain.AskOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != domain.NoRelevantContentAnswer {
		t.Errorf("expected canned answer, got %q", result.Answer)
	}
	if result.Grounded {
		t.Error("expected ungrounded result")
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(result.Sources))
	}

	// The question is embedded once; the LLM is never called
	if embedder.QueryCalls != 1 {
		t.Errorf("expected 1 query embedding, got %d", embedder.QueryCalls)
	}
	if llm.AnswerCalls != 0 {
		t.Errorf("expected no llm calls, got %d", llm.AnswerCalls)
	}
}

func TestChatService_Ask_ChannelFilter(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "content from channel one")

	_, llm, _, svc := newTestChat(store)

	result, err := svc.Ask(context.Background(), "what is in channel two?", domain.AskOptions{ChannelID: "UC2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Grounded {
		t.Error("expected ungrounded result for unmatched channel filter")
	}
	if llm.AnswerCalls != 0 {
		t.Errorf("expected no llm calls, got %d", llm.AnswerCalls)
	}
}

func TestChatService_Ask_EmptyQuestion(t *testing.T) {
	_, _, _, svc := newTestChat(mocks.NewMockVectorStore())

	_, err := svc.Ask(context.Background(), "   ", domain.AskOptions{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChatService_Ask_NoLLMService(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "some indexed content")

	embedder := mocks.NewMockEmbeddingService()
	services := createTestServices(embedder)
	svc := NewChatService(NewRetriever(store, services), services, nil)

	_, err := svc.Ask(context.Background(), "a question", domain.AskOptions{})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestChatService_Ask_LLMError(t *testing.T) {
	store := mocks.NewMockVectorStore()
	seedChunks(t, store, "UC1", "some indexed content")

	_, llm, _, svc := newTestChat(store)
	llm.Err = errors.New("model overloaded")

	_, err := svc.Ask(context.Background(), "a question", domain.AskOptions{})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("expected wrapped llm error, got %v", err)
	}
}
