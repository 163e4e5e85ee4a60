package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driving"
	"github.com/cobalt-labs/tubechat-core/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService answers questions by retrieving stored transcript chunks and
// asking the LLM to answer grounded on them. When retrieval yields nothing
// the canned answer is returned and the LLM is never called.
type chatService struct {
	retriever *Retriever
	services  *runtime.Services
	logger    *slog.Logger
}

// NewChatService creates a new ChatService.
// The LLM service is accessed dynamically via runtime.Services.
func NewChatService(retriever *Retriever, services *runtime.Services, logger *slog.Logger) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}

	return &chatService{
		retriever: retriever,
		services:  services,
		logger:    logger,
	}
}

// Ask answers a question about the indexed videos.
func (s *chatService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultAskOptions().TopK
	}

	results, err := s.retriever.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.logger.Info("no relevant chunks found", "question", question)
		return &domain.ChatResult{
			Question: question,
			Answer:   domain.NoRelevantContentAnswer,
			Sources:  []domain.Source{},
			Grounded: false,
		}, nil
	}

	llm := s.services.LLMService()
	if llm == nil {
		return nil, fmt.Errorf("llm service not configured: %w", domain.ErrServiceUnavailable)
	}

	contexts := make([]string, len(results))
	sources := make([]domain.Source, len(results))
	for i, result := range results {
		contexts[i] = formatContext(i+1, result.Chunk)
		sources[i] = domain.Source{
			VideoID:     result.Chunk.VideoID,
			VideoTitle:  result.Chunk.VideoTitle,
			ChannelName: result.Chunk.ChannelName,
			Position:    result.Chunk.Position,
			StartChar:   result.Chunk.StartChar,
			EndChar:     result.Chunk.EndChar,
			Score:       result.Score,
		}
	}

	answer, err := llm.Answer(ctx, question, contexts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	s.logger.Info("answered question",
		"question", question,
		"sources", len(sources),
		"top_score", sources[0].Score,
	)

	return &domain.ChatResult{
		Question: question,
		Answer:   answer,
		Sources:  sources,
		Grounded: true,
	}, nil
}

// formatContext renders one retrieved chunk as a context passage for the LLM.
func formatContext(n int, chunk *domain.Chunk) string {
	return fmt.Sprintf("[Source %d] Video: %s (%s)\n%s", n, chunk.VideoTitle, chunk.VideoID, chunk.Content)
}
