package driven

import (
	"context"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// VectorStore persists embedding records in a remote index and retrieves
// the nearest records to a query vector. The index is the system's only
// durable store; its ANN internals are the remote service's concern.
type VectorStore interface {
	// Upsert inserts or overwrites records by ID. Returns the number of
	// records accepted before any failure, so a partial-batch failure is
	// surfaced with its progress rather than silently swallowed.
	Upsert(ctx context.Context, records []domain.EmbeddingRecord) (int, error)

	// Search returns up to k records most similar to the query vector,
	// ordered by descending score. Returns fewer than k when the index
	// holds fewer records. Equal-score ordering is store-defined and
	// must not be assumed stable.
	Search(ctx context.Context, vector []float32, k int) (*domain.QueryResult, error)

	// Stats reports the total number of vectors in the index.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
