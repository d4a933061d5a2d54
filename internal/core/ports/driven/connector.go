package driven

import (
	"context"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// MailConnector fetches messages from the mail provider.
type MailConnector interface {
	// Validate checks the connector is configured and authenticated.
	// Makes a lightweight API call; returns nil if ready to fetch.
	Validate(ctx context.Context) error

	// Fetch streams messages matching the filter. The message channel is
	// closed when the listing is exhausted or on failure; the error channel
	// receives at most one terminal error. Pagination cursors live only for
	// the duration of the call, so a failed fetch restarts from the beginning.
	Fetch(ctx context.Context, filter domain.MailFilter) (<-chan domain.Message, <-chan error)

	// Close releases resources.
	Close() error
}
