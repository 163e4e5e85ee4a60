package ai

import (
	"fmt"
	"strings"
)

// answerSystemPrompt instructs the model to stay grounded on the retrieved
// transcript passages.
const answerSystemPrompt = "You are a helpful assistant that answers questions based on the provided context. " +
	"Use the context to answer the question accurately. If the context doesn't contain " +
	"the information needed to answer the question, say so."

// buildUserMessage renders the retrieved passages and the question as a
// single user message. The passages already carry their numbered source
// headers.
func buildUserMessage(question string, contexts []string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(contexts, "\n\n"), question)
}
