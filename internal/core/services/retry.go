package services

import (
	"context"
	"time"

	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

// DefaultRetryDelay is the base delay before the first retry.
const DefaultRetryDelay = 500 * time.Millisecond

// Retry runs fn up to attempts times with exponential backoff between
// tries. It returns the last error if every attempt fails, and stops
// early when ctx is cancelled. attempts < 1 is treated as 1.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryDelay
	}

	var err error
	delay := baseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		logger.Debug("Attempt %d/%d failed, retrying in %s: %v", attempt, attempts, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}

// Ensure RetryingEmbedder implements the interface.
var _ driven.EmbeddingService = (*RetryingEmbedder)(nil)

// RetryingEmbedder decorates an embedding service with retries on
// Embed and EmbedBatch. Nothing else retries implicitly; callers opt in
// by wrapping.
type RetryingEmbedder struct {
	inner    driven.EmbeddingService
	attempts int
	delay    time.Duration
}

// NewRetryingEmbedder wraps inner with retry behaviour.
func NewRetryingEmbedder(inner driven.EmbeddingService, attempts int, baseDelay time.Duration) *RetryingEmbedder {
	return &RetryingEmbedder{
		inner:    inner,
		attempts: attempts,
		delay:    baseDelay,
	}
}

// Embed generates an embedding, retrying transient failures.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := Retry(ctx, r.attempts, r.delay, func(ctx context.Context) error {
		var innerErr error
		vector, innerErr = r.inner.Embed(ctx, text)
		return innerErr
	})
	return vector, err
}

// EmbedBatch generates embeddings for multiple texts, retrying the
// whole batch on failure.
func (r *RetryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := Retry(ctx, r.attempts, r.delay, func(ctx context.Context) error {
		var innerErr error
		vectors, innerErr = r.inner.EmbedBatch(ctx, texts)
		return innerErr
	})
	return vectors, err
}

// Dimensions returns the inner service's vector size.
func (r *RetryingEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (r *RetryingEmbedder) ModelName() string {
	return r.inner.ModelName()
}

// Ping validates the inner service is reachable.
func (r *RetryingEmbedder) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the inner service's resources.
func (r *RetryingEmbedder) Close() error {
	return r.inner.Close()
}
