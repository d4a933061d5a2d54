// Package postprocessors turns a normalised mail document into the
// chunks the embedding flow consumes.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs a document through an ordered chain of post-processors.
// The first processor creates chunks from the document content; later
// ones may rewrite or filter them. Output is cleaned before it is
// returned: chunks with no content are dropped, and every chunk is
// stamped with the owning message ID so record IDs stay well-formed.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline running the given processors in order.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process chunks the document. Chunk IDs derive from the document's
// message ID, so a document without one is rejected up front.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if doc.MessageID == "" {
		return nil, fmt.Errorf("document has no message ID")
	}

	var chunks []domain.Chunk
	for _, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}

		out, err := proc.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", proc.Name(), err)
		}
		chunks = out
	}

	return clean(doc, chunks), nil
}

// clean drops chunks a processor left empty and attributes any
// unattributed chunk to the source message.
func clean(doc *domain.Document, chunks []domain.Chunk) []domain.Chunk {
	kept := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		if c.MessageID == "" {
			c.MessageID = doc.MessageID
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
