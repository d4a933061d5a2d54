package driven

import (
	"context"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// Normaliser transforms a raw message into a clean document.
// Must be pure: the same message always yields the same document.
type Normaliser interface {
	// Normalise parses the message's RFC 2822 payload, strips HTML and
	// quoted-reply noise, and returns the document to be chunked.
	Normalise(ctx context.Context, msg *domain.Message) (*domain.Document, error)
}
