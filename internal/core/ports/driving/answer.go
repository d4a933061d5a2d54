package driving

import (
	"context"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// Answerer runs the query flow: embed question → search → generate.
type Answerer interface {
	// Answer retrieves the most relevant mail chunks for the question and
	// generates an answer conditioned on them. Fail-fast: any stage error
	// aborts the flow; no partial state is persisted.
	Answer(ctx context.Context, question string) (*domain.Answer, error)

	// IndexStats reports the size of the backing vector index, so the
	// caller can show what a question will be answered against.
	IndexStats(ctx context.Context) (*domain.IndexStats, error)
}
