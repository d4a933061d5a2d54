package driving

import (
	"context"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// Ingestor runs the ingest flow: fetch → normalise → chunk → embed → upsert.
type Ingestor interface {
	// Ingest processes all messages matching the filter. The returned
	// status is valid even when err is non-nil, so callers can report how
	// much work completed before the failure. A failed ingest is not
	// resumed; rerunning is safe because upserts are ID-keyed.
	Ingest(ctx context.Context, filter domain.MailFilter) (*IngestStatus, error)
}

// IngestStatus tracks ingest progress for reporting.
type IngestStatus struct {
	// MessagesFetched is the number of messages received from the provider.
	MessagesFetched int

	// MessagesSkipped counts messages that normalised to empty content.
	MessagesSkipped int

	// ChunksEmbedded is the number of chunks successfully embedded.
	ChunksEmbedded int

	// RecordsUpserted is the number of records accepted by the store.
	RecordsUpserted int
}
