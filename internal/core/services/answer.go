package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// Answer flow defaults.
const (
	// DefaultTopK is the number of search matches retrieved per question.
	DefaultTopK = 5

	// DefaultPromptBudget caps the assembled prompt length in characters.
	DefaultPromptBudget = 3000

	// answerMaxTokens bounds the generated answer length.
	answerMaxTokens = 512

	// answerTemperature keeps generation factual rather than creative.
	answerTemperature = 0.2
)

// noMatchAnswer is returned when the index has nothing relevant;
// the language model is not called in that case.
const noMatchAnswer = "No relevant emails found for your question."

// AnswerService drives the query flow:
// embed question → similarity search → assemble prompt → generate.
//
// Fail-fast: the first stage error aborts the flow wrapped in a
// StageError. Nothing is persisted.
type AnswerService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.LLMService

	topK         int
	promptBudget int
}

// AnswerOption configures the answer service.
type AnswerOption func(*AnswerService)

// WithTopK sets how many matches are retrieved per question.
func WithTopK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithPromptBudget sets the prompt character budget.
func WithPromptBudget(n int) AnswerOption {
	return func(s *AnswerService) {
		if n > 0 {
			s.promptBudget = n
		}
	}
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		embedder:     embedder,
		store:        store,
		llm:          llm,
		topK:         DefaultTopK,
		promptBudget: DefaultPromptBudget,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Answer retrieves the most relevant mail chunks for the question and
// generates an answer conditioned on them.
func (s *AnswerService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewStageError(domain.StageEmbeddingQuery, "",
			fmt.Errorf("%w: empty question", domain.ErrConfig))
	}

	logger.Stage("Embedding question")
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, domain.NewStageError(domain.StageEmbeddingQuery, question, err)
	}

	logger.Stage("Searching index")
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStageError(domain.StageSearching, "",
			fmt.Errorf("%w: %v", domain.ErrTimeout, err))
	}
	result, err := s.store.Search(ctx, vector, s.topK)
	if err != nil {
		return nil, domain.NewStageError(domain.StageSearching, question, err)
	}

	if len(result.Matches) == 0 {
		logger.Info("No matches for question")
		return &domain.Answer{
			Question: question,
			Text:     noMatchAnswer,
		}, nil
	}

	contexts := buildContexts(result.Matches)
	contexts, matches := fitBudget(question, contexts, result.Matches, s.promptBudget)
	prompt := buildPrompt(question, contexts)

	logger.Stage("Generating answer")
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStageError(domain.StageGenerating, "",
			fmt.Errorf("%w: %v", domain.ErrTimeout, err))
	}
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, domain.NewStageError(domain.StageGenerating, question, err)
	}

	return &domain.Answer{
		Question: question,
		Contexts: contexts,
		Sources:  matches,
		Text:     text,
	}, nil
}

// IndexStats reports the size of the backing vector index.
func (s *AnswerService) IndexStats(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, domain.NewStageError(domain.StageSearching, "", err)
	}
	return stats, nil
}

// buildContexts renders one context block per match, highest score first.
func buildContexts(matches []domain.Match) []string {
	contexts := make([]string, 0, len(matches))
	for _, m := range matches {
		meta := m.Metadata

		var b strings.Builder
		fmt.Fprintf(&b, "Subject: %s\n", orNA(meta.Subject))
		fmt.Fprintf(&b, "From: %s\n", orNA(meta.From))
		fmt.Fprintf(&b, "Date: %s\n", orNA(meta.Date))

		content := meta.ChunkText
		if content == "" {
			content = meta.Snippet
		}
		fmt.Fprintf(&b, "Content: %s\n", content)

		contexts = append(contexts, b.String())
	}
	return contexts
}

// fitBudget drops the lowest-scoring contexts until the assembled prompt
// fits the character budget. At least one context is always kept so the
// model has something to ground on, which means a single oversized
// context can push the prompt past the budget rather than being dropped.
func fitBudget(question string, contexts []string, matches []domain.Match, budget int) ([]string, []domain.Match) {
	for len(contexts) > 1 && len(buildPrompt(question, contexts)) > budget {
		contexts = contexts[:len(contexts)-1]
		matches = matches[:len(matches)-1]
	}
	return contexts, matches
}

// buildPrompt assembles the QUESTION/CONTEXT prompt.
func buildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(
		"QUESTION:\n%s\n\nCONTEXT:\n%s\n\nUsing only the CONTEXT above, answer the QUESTION as accurately and completely as possible.",
		question,
		strings.Join(contexts, "\n\n"),
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
