package mocks

import (
	"context"
	"fmt"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	// AnswerCalls counts how many times Answer was invoked
	AnswerCalls int

	// FixedAnswer is returned when set; otherwise a summary of the call
	FixedAnswer string

	// Err is returned from Answer when set
	Err error

	// LastQuestion and LastContexts record the most recent call
	LastQuestion string
	LastContexts []string
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

func (m *MockLLMService) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	m.AnswerCalls++
	m.LastQuestion = question
	m.LastContexts = contexts
	if m.Err != nil {
		return "", m.Err
	}
	if m.FixedAnswer != "" {
		return m.FixedAnswer, nil
	}
	return fmt.Sprintf("answer to %q from %d passages", question, len(contexts)), nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}
