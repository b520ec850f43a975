package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"jarvis-assistant/internal/models"
)

// FallbackAnswer is returned when retrieval produced no context to
// ground an answer on.
const FallbackAnswer = "I couldn't find relevant information to answer your question."

// CompletionClient produces an answer for a fully-built prompt
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationService turns a query plus retrieved context into a
// grounded answer. With no context it short-circuits to the fallback
// answer without calling the completion backend.
type GenerationService struct {
	client CompletionClient
	logger *log.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(client CompletionClient, logger *log.Logger) *GenerationService {
	return &GenerationService{
		client: client,
		logger: logger,
	}
}

// Generate produces an answer grounded in the given contexts. Contexts
// are included in the prompt in rank order. A context deadline that
// expires mid-generation surfaces as a generation_timeout error.
func (s *GenerationService) Generate(ctx context.Context, query string, contexts []models.RetrievedContext) (string, error) {
	if len(contexts) == 0 {
		s.logger.Printf("No context retrieved for query, returning fallback answer")
		return FallbackAnswer, nil
	}

	prompt := buildGroundedPrompt(query, contexts)
	answer, err := s.client.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", NewServiceError(CodeGenerationTimeout, "generate", err, "generation timed out")
		}
		return "", NewServiceError(CodeGenerationUnavailable, "generate", err, "")
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", NewServiceError(CodeGenerationUnavailable, "generate", nil, "completion backend returned an empty answer")
	}
	return answer, nil
}

// buildGroundedPrompt assembles the instruction, the ranked context
// passages, and the user's question into a single prompt.
func buildGroundedPrompt(query string, contexts []models.RetrievedContext) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using ONLY the context below. ")
	sb.WriteString("If the context does not contain the answer, say you don't know.\n\n")
	sb.WriteString("Context:\n")
	for i, c := range contexts {
		sb.WriteString(fmt.Sprintf("[Document %d]: %s\n", i+1, c.Text))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}

// ExtractiveClient is a local completion backend that answers by
// quoting the highest-ranked passage. It keeps the service usable when
// no LLM endpoint is configured.
type ExtractiveClient struct{}

// NewExtractiveClient creates the local extractive backend
func NewExtractiveClient() *ExtractiveClient {
	return &ExtractiveClient{}
}

// Complete extracts the first context passage from the prompt
func (c *ExtractiveClient) Complete(ctx context.Context, prompt string) (string, error) {
	const marker = "[Document 1]: "
	start := strings.Index(prompt, marker)
	if start < 0 {
		return "", fmt.Errorf("prompt contains no context passages")
	}
	rest := prompt[start+len(marker):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return "Based on the indexed documents: " + strings.TrimSpace(rest), nil
}
