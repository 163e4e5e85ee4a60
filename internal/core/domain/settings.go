package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOllama    AIProvider = "ollama"
)

// RequiresAPIKey reports whether the provider needs an API key.
// Ollama is self-hosted and only needs a base URL.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service used for answer generation
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkSettings configures the transcript chunker.
// Size and Overlap are counted in words.
type ChunkSettings struct {
	Size    int `json:"size"`
	Overlap int `json:"overlap"`
}

// DefaultChunkSettings returns sensible defaults.
func DefaultChunkSettings() ChunkSettings {
	return ChunkSettings{Size: 200, Overlap: 40}
}

// Valid reports whether the chunk settings are usable.
// Overlap must be strictly smaller than size or chunking cannot advance.
func (c ChunkSettings) Valid() bool {
	return c.Size > 0 && c.Overlap >= 0 && c.Overlap < c.Size
}
