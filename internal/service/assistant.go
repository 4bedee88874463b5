package service

import (
	"context"
	"log"
	"strings"

	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/retrieval"
	"github.com/farolabs/faro/internal/telemetry"
)

// ContextBuilder produces the bounded retrieval context for a query.
type ContextBuilder interface {
	BuildContext(ctx context.Context, query string, topK int, area string) (retrieval.Result, error)
}

// CompletionClient generates the reply text from a prompt pair.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AssistantConfig controls assistant behavior.
type AssistantConfig struct {
	// Name is how the assistant introduces itself.
	Name string
	// DefaultArea scopes queries that arrive without an area. Empty means
	// search every indexed area.
	DefaultArea string
}

// AskInput represents one question for the assistant.
type AskInput struct {
	Query string
	TopK  int
	Area  string
}

// AssistantService answers questions over the indexed documents: retrieval
// first, then a completion grounded on the assembled context. Greetings are
// answered directly and an empty retrieval turns into a guidance reply, so
// the completion endpoint is only called when there is context to ground it.
type AssistantService struct {
	retriever  ContextBuilder
	completion CompletionClient
	cfg        AssistantConfig
}

// NewAssistantService creates a new AssistantService instance.
func NewAssistantService(retriever ContextBuilder, completion CompletionClient, cfg AssistantConfig) *AssistantService {
	if cfg.Name == "" {
		cfg.Name = "Aria"
	}
	return &AssistantService{
		retriever:  retriever,
		completion: completion,
		cfg:        cfg,
	}
}

// Ask answers one question.
func (s *AssistantService) Ask(ctx context.Context, input AskInput) (domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Ask", telemetry.SpanAttributes{
		Area:      input.Area,
		Operation: "ask",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return domain.Answer{}, domain.ErrEmptyQuery
	}

	if isGreeting(input.Query) {
		return domain.Answer{Reply: greetingReply(s.cfg.Name)}, nil
	}

	area := input.Area
	if strings.TrimSpace(area) == "" {
		area = s.cfg.DefaultArea
	}

	res, err := s.retriever.BuildContext(ctx, input.Query, input.TopK, area)
	if err != nil {
		span.SetError(err)
		return domain.Answer{}, err
	}

	answer := domain.Answer{
		Area:          res.DetectedArea,
		Context:       res.Context,
		Sources:       res.Sources,
		AreasSearched: res.AreasSearched,
	}

	if strings.TrimSpace(res.Context) == "" {
		log.Printf("assistant: no context found (areas searched: %v)", res.AreasSearched)
		answer.Reply = emptyContextReply(res.DetectedArea, res.AreasSearched)
		return answer, nil
	}

	reply, err := s.completion.Complete(ctx, systemPrompt(s.cfg.Name), userPrompt(input.Query, res.Context, res.DetectedArea, res.AreasSearched))
	if err != nil {
		span.SetError(err)
		return domain.Answer{}, err
	}

	answer.Reply = reply
	return answer, nil
}
