package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOllamaEmbedding_Defaults(t *testing.T) {
	svc, err := NewOllamaEmbedding("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	emb := svc.(*OllamaEmbedding)
	if emb.baseURL != "http://localhost:11434" {
		t.Errorf("expected default base URL, got %s", emb.baseURL)
	}
	if emb.model != "all-minilm" {
		t.Errorf("expected default model all-minilm, got %s", emb.model)
	}
	if svc.Dimensions() != 384 {
		t.Errorf("expected 384 dimensions, got %d", svc.Dimensions())
	}
}

func TestOllamaEmbedding_KnownModelDimensions(t *testing.T) {
	svc, err := NewOllamaEmbedding("", "nomic-embed-text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Dimensions() != 768 {
		t.Errorf("expected 768 dimensions, got %d", svc.Dimensions())
	}
}

func TestOllamaEmbedding_Embed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("expected /api/embed, got %s", r.URL.Path)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "all-minilm" {
			t.Errorf("expected model all-minilm, got %s", req.Model)
		}

		resp := ollamaEmbedResponse{
			Model:      req.Model,
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, err := NewOllamaEmbedding(server.URL, "all-minilm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 || result[1][1] != 0.4 {
		t.Errorf("unexpected embeddings: %v", result)
	}
}

func TestOllamaEmbedding_Embed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ollamaEmbedResponse{Embeddings: [][]float32{{0.1}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, _ := NewOllamaEmbedding(server.URL, "all-minilm")

	_, err := svc.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Error("expected error when embedding count does not match input count")
	}
}

func TestOllamaEmbedding_Embed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Error: "model not found"})
	}))
	defer server.Close()

	svc, _ := NewOllamaEmbedding(server.URL, "missing-model")

	_, err := svc.Embed(context.Background(), []string{"test"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected model not found error, got %v", err)
	}
}

func TestOllamaEmbedding_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected /api/tags, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	svc, _ := NewOllamaEmbedding(server.URL, "all-minilm")

	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected no error from health check, got %v", err)
	}
}

func TestOllamaLLM_Answer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected /api/chat, got %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "Question: why?") {
			t.Errorf("expected question in user message, got %q", req.Messages[1].Content)
		}
		if !strings.Contains(req.Messages[1].Content, "[Source 1]") {
			t.Errorf("expected context passage in user message, got %q", req.Messages[1].Content)
		}

		resp := ollamaChatResponse{
			Message: chatMessage{Role: "assistant", Content: "because"},
			Done:    true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, err := NewOllamaLLM(server.URL, "llama3.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer, err := svc.Answer(context.Background(), "why?", []string{"[Source 1] Video: T (v)\nsome passage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "because" {
		t.Errorf("expected answer 'because', got %q", answer)
	}
}

func TestOllamaLLM_Answer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Error: "out of memory"})
	}))
	defer server.Close()

	svc, _ := NewOllamaLLM(server.URL, "llama3.2")

	_, err := svc.Answer(context.Background(), "q", []string{"c"})
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("expected out of memory error, got %v", err)
	}
}
