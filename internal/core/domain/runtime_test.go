package domain

import "testing"

func TestNewRuntimeConfig(t *testing.T) {
	config := NewRuntimeConfig("redis")

	if config.QueueBackend != "redis" {
		t.Errorf("expected queue backend redis, got %s", config.QueueBackend)
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to start unavailable")
	}
	if config.LLMAvailable() {
		t.Error("expected LLM to start unavailable")
	}
}

func TestNewRuntimeConfigEmptyBackend(t *testing.T) {
	config := NewRuntimeConfig("")

	if config.QueueBackend != "none" {
		t.Errorf("expected queue backend none, got %s", config.QueueBackend)
	}
}

func TestRuntimeConfigAvailabilityFlags(t *testing.T) {
	config := NewRuntimeConfig("none")

	config.SetEmbeddingAvailable(true)
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding available after set")
	}

	config.SetLLMAvailable(true)
	if !config.LLMAvailable() {
		t.Error("expected LLM available after set")
	}

	config.SetEmbeddingAvailable(false)
	if config.EmbeddingAvailable() {
		t.Error("expected embedding unavailable after unset")
	}
}

func TestRuntimeConfigCanAnswer(t *testing.T) {
	config := NewRuntimeConfig("none")

	if config.CanAnswer() {
		t.Error("expected CanAnswer false with no services")
	}

	config.SetEmbeddingAvailable(true)
	if config.CanAnswer() {
		t.Error("expected CanAnswer false with embedding only")
	}

	config.SetLLMAvailable(true)
	if !config.CanAnswer() {
		t.Error("expected CanAnswer true with both services")
	}
}
