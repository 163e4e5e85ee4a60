package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserMessage(t *testing.T) {
	contexts := []string{
		"[Source 1] Go Concurrency Patterns (chunk 0):\nchannels are typed conduits",
		"[Source 2] Go Concurrency Patterns (chunk 3):\nselect waits on multiple channels",
	}

	msg := buildUserMessage("what are channels?", contexts)

	require.True(t, strings.HasPrefix(msg, "Context:\n"), "message should lead with the context block")
	assert.Contains(t, msg, "[Source 1]")
	assert.Contains(t, msg, "[Source 2]")
	assert.Contains(t, msg, "\n\nQuestion: what are channels?")
	assert.True(t, strings.HasSuffix(msg, "Question: what are channels?"), "question should come last")

	// Passages are separated by a blank line
	assert.Contains(t, msg, "typed conduits\n\n[Source 2]")
}

func TestBuildUserMessageNoContexts(t *testing.T) {
	msg := buildUserMessage("anything indexed?", nil)

	assert.Equal(t, "Context:\n\n\nQuestion: anything indexed?", msg)
}

func TestAnswerSystemPromptGrounding(t *testing.T) {
	// The system prompt must tell the model to admit when the context
	// does not cover the question, not to improvise.
	assert.Contains(t, answerSystemPrompt, "based on the provided context")
	assert.Contains(t, answerSystemPrompt, "say so")
}
