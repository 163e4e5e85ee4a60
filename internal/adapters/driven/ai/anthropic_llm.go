package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Ensure AnthropicLLM implements LLMService
var _ driven.LLMService = (*AnthropicLLM)(nil)

// AnthropicLLM implements LLMService using Anthropic's messages API
type AnthropicLLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const anthropicVersion = "2023-06-01"

// NewAnthropicLLM creates a new Anthropic LLM service
func NewAnthropicLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	return &AnthropicLLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// anthropicRequest is the request body for the messages API
type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

// anthropicResponse is the response from the messages API
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Answer generates an answer grounded on the given context passages
func (l *AnthropicLLM) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	reqBody := anthropicRequest{
		Model:     l.model,
		MaxTokens: 1024,
		System:    answerSystemPrompt,
		Messages: []chatMessage{
			{Role: "user", Content: buildUserMessage(question, contexts)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var msgResp anthropicResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("Anthropic API error: %s (type: %s)", msgResp.Error.Message, msgResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Anthropic API returned status %d", resp.StatusCode)
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("Anthropic returned no content")
	}

	return msgResp.Content[0].Text, nil
}

// Model returns the model name being used
func (l *AnthropicLLM) Model() string {
	return l.model
}

// Ping verifies the LLM service is available.
// The messages API has no cheap list endpoint, so send a minimal request.
func (l *AnthropicLLM) Ping(ctx context.Context) error {
	_, err := l.Answer(ctx, "ping", []string{"health check"})
	return err
}

// Close releases resources held by the LLM service
func (l *AnthropicLLM) Close() error {
	l.client.CloseIdleConnections()
	return nil
}
