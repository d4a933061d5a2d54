package postprocessors

import (
	"github.com/custodia-labs/mailrag-cli/internal/postprocessors/chunker"
)

// Default builds the standard processing pipeline: the token-budget
// chunker, with room to append further processors later.
func Default(maxTokens int) *Pipeline {
	var opts []chunker.Option
	if maxTokens > 0 {
		opts = append(opts, chunker.WithMaxTokens(maxTokens))
	}
	return NewPipeline(chunker.New(opts...))
}
