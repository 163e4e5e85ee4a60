package domain

import "sync"

// RuntimeConfig tracks which optional capabilities are currently available.
// AI services can be swapped at runtime, so availability is mutable and
// guarded for concurrent reads from request handlers.
type RuntimeConfig struct {
	mu sync.RWMutex

	// QueueBackend is "redis" when a task queue is configured, "none" otherwise.
	QueueBackend string

	embeddingAvailable bool
	llmAvailable       bool
}

// NewRuntimeConfig creates a runtime config for the given queue backend.
func NewRuntimeConfig(queueBackend string) *RuntimeConfig {
	if queueBackend == "" {
		queueBackend = "none"
	}
	return &RuntimeConfig{QueueBackend: queueBackend}
}

// EmbeddingAvailable reports whether an embedding service is configured.
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag.
func (c *RuntimeConfig) SetEmbeddingAvailable(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = v
}

// LLMAvailable reports whether an LLM service is configured.
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetLLMAvailable updates the LLM availability flag.
func (c *RuntimeConfig) SetLLMAvailable(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = v
}

// CanAnswer reports whether chat is possible: both retrieval embedding and
// generation need a configured service.
func (c *RuntimeConfig) CanAnswer() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable && c.llmAvailable
}
