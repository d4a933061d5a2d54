// Package pinecone provides a vector store adapter for a Pinecone index
// over its REST API. The index is the system's only durable store;
// upserts are idempotent by record ID (last write wins).
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// UpsertBatchSize is the number of records sent per upsert request.
	// Pinecone caps upsert batches at 100 vectors.
	UpsertBatchSize = 100
)

// Config holds configuration for the Pinecone store.
type Config struct {
	// Endpoint is the index host, e.g. https://my-index-abc123.svc.us-east-1-aws.pinecone.io.
	Endpoint string

	// APIKey authenticates every request via the Api-Key header.
	APIKey string

	// Dimension is the index's vector dimension. Records with any other
	// vector length are rejected locally before the request is sent.
	Dimension int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store talks to a Pinecone index.
type Store struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	dimension int
}

// vector is the Pinecone wire format for one record.
type vector struct {
	ID       string                `json:"id"`
	Values   []float32             `json:"values"`
	Metadata domain.RecordMetadata `json:"metadata"`
}

// upsertRequest is the /vectors/upsert request format.
type upsertRequest struct {
	Vectors []vector `json:"vectors"`
}

// upsertResponse is the /vectors/upsert response format.
type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// queryRequest is the /query request format.
type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

// queryResponse is the /query response format.
type queryResponse struct {
	Matches []struct {
		ID       string                `json:"id"`
		Score    float64               `json:"score"`
		Metadata domain.RecordMetadata `json:"metadata"`
	} `json:"matches"`
}

// statsResponse is the /describe_index_stats response format.
type statsResponse struct {
	TotalVectorCount int64 `json:"totalVectorCount"`
	Dimension        int   `json:"dimension"`
}

// New creates a Pinecone store client.
func New(cfg Config) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:    cfg.APIKey,
		dimension: cfg.Dimension,
	}
}

// Upsert sends records in batches of UpsertBatchSize, preserving order.
// Returns the number of records accepted before any failure so partial
// progress is reported, never swallowed. Records whose vector length
// differs from the index dimension are rejected before anything is sent.
func (s *Store) Upsert(ctx context.Context, records []domain.EmbeddingRecord) (int, error) {
	for _, rec := range records {
		if len(rec.Vector) != s.dimension {
			return 0, fmt.Errorf("%w: record %s has dimension %d, index expects %d",
				domain.ErrStore, rec.ID, len(rec.Vector), s.dimension)
		}
	}

	accepted := 0
	for start := 0; start < len(records); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := make([]vector, 0, end-start)
		for _, rec := range records[start:end] {
			batch = append(batch, vector{
				ID:       rec.ID,
				Values:   rec.Vector,
				Metadata: rec.Metadata,
			})
		}

		var resp upsertResponse
		if err := s.post(ctx, "/vectors/upsert", upsertRequest{Vectors: batch}, &resp); err != nil {
			return accepted, err
		}
		accepted += len(batch)
	}

	return accepted, nil
}

// Search returns up to k records most similar to the query vector.
// The store's descending-score contract is verified on the way out.
func (s *Store) Search(ctx context.Context, queryVector []float32, k int) (*domain.QueryResult, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			domain.ErrStore, len(queryVector), s.dimension)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrStore, k)
	}

	var resp queryResponse
	err := s.post(ctx, "/query", queryRequest{
		Vector:          queryVector,
		TopK:            k,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	result := &domain.QueryResult{Matches: make([]domain.Match, 0, len(resp.Matches))}
	for i, m := range resp.Matches {
		if i > 0 && m.Score > resp.Matches[i-1].Score {
			return nil, fmt.Errorf("%w: results not ordered by descending score", domain.ErrStore)
		}
		result.Matches = append(result.Matches, domain.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	if len(result.Matches) > k {
		result.Matches = result.Matches[:k]
	}
	return result, nil
}

// Stats reports the index's vector count and dimension.
func (s *Store) Stats(ctx context.Context) (*domain.IndexStats, error) {
	var resp statsResponse
	if err := s.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &domain.IndexStats{
		TotalVectors: resp.TotalVectorCount,
		Dimension:    resp.Dimension,
	}, nil
}

// Ping validates the index is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Stats(ctx)
	return err
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// post sends a JSON request and decodes the JSON response.
func (s *Store) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", domain.ErrStore, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.endpoint+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrStore, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("%w: pinecone status %d", domain.ErrStore, resp.StatusCode)
		}
		return fmt.Errorf("%w: pinecone status %d: %s", domain.ErrStore, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrStore, err)
	}
	return nil
}
