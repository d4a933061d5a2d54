package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

const testDimension = 4

func testVector(fill float32) []float32 {
	v := make([]float32, testDimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func testRecord(id string) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		ID:     id,
		Vector: testVector(0.5),
		Metadata: domain.RecordMetadata{
			MessageID: "msg-1",
			Subject:   "Quarterly report",
			ChunkText: "numbers look good",
		},
	}
}

// fakePinecone spins up an httptest server that mimics the index API.
func fakePinecone(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		Endpoint:  srv.URL,
		APIKey:    "test-key",
		Dimension: testDimension,
	})
}

func TestStoreUpsert(t *testing.T) {
	t.Run("sends records with api key header", func(t *testing.T) {
		var gotKey string
		var gotReq upsertRequest
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/vectors/upsert" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			gotKey = r.Header.Get("Api-Key")
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			json.NewEncoder(w).Encode(upsertResponse{UpsertedCount: len(gotReq.Vectors)})
		})

		n, err := store.Upsert(context.Background(), []domain.EmbeddingRecord{
			testRecord("msg-1:0"),
			testRecord("msg-1:1"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 accepted, got %d", n)
		}
		if gotKey != "test-key" {
			t.Errorf("expected Api-Key header, got %q", gotKey)
		}
		if len(gotReq.Vectors) != 2 {
			t.Fatalf("expected 2 vectors in request, got %d", len(gotReq.Vectors))
		}
		if gotReq.Vectors[0].ID != "msg-1:0" {
			t.Errorf("expected id msg-1:0, got %s", gotReq.Vectors[0].ID)
		}
		if gotReq.Vectors[0].Metadata.Subject != "Quarterly report" {
			t.Errorf("metadata not carried: %+v", gotReq.Vectors[0].Metadata)
		}
	})

	t.Run("splits into batches of at most 100", func(t *testing.T) {
		var batches []int
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			var req upsertRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			batches = append(batches, len(req.Vectors))
			json.NewEncoder(w).Encode(upsertResponse{UpsertedCount: len(req.Vectors)})
		})

		records := make([]domain.EmbeddingRecord, 0, 250)
		for i := 0; i < 250; i++ {
			records = append(records, testRecord(fmt.Sprintf("msg-1:%d", i)))
		}

		n, err := store.Upsert(context.Background(), records)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 250 {
			t.Errorf("expected 250 accepted, got %d", n)
		}
		want := []int{100, 100, 50}
		if len(batches) != len(want) {
			t.Fatalf("expected %d batches, got %v", len(want), batches)
		}
		for i, b := range batches {
			if b != want[i] {
				t.Errorf("batch %d: expected %d vectors, got %d", i, want[i], b)
			}
		}
	})

	t.Run("rejects mismatched dimension before sending", func(t *testing.T) {
		called := false
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		bad := testRecord("msg-1:0")
		bad.Vector = []float32{0.1, 0.2}
		_, err := store.Upsert(context.Background(), []domain.EmbeddingRecord{bad})
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if called {
			t.Error("request should not have been sent")
		}
	})

	t.Run("reports accepted count on mid-stream failure", func(t *testing.T) {
		calls := 0
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls > 1 {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(upsertResponse{UpsertedCount: 100})
		})

		records := make([]domain.EmbeddingRecord, 0, 150)
		for i := 0; i < 150; i++ {
			records = append(records, testRecord(fmt.Sprintf("msg-1:%d", i)))
		}

		n, err := store.Upsert(context.Background(), records)
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if n != 100 {
			t.Errorf("expected 100 accepted before failure, got %d", n)
		}
	})

	t.Run("empty input succeeds without a request", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		n, err := store.Upsert(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 accepted, got %d", n)
		}
	})
}

func TestStoreSearch(t *testing.T) {
	t.Run("returns matches with metadata", func(t *testing.T) {
		var gotReq queryRequest
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/query" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			fmt.Fprint(w, `{"matches":[
				{"id":"msg-1:0","score":0.92,"metadata":{"subject":"Quarterly report","chunk_text":"numbers look good"}},
				{"id":"msg-2:1","score":0.71,"metadata":{"subject":"Re: planning","chunk_text":"next sprint"}}
			]}`)
		})

		result, err := store.Search(context.Background(), testVector(0.5), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !gotReq.IncludeMetadata {
			t.Error("expected includeMetadata to be set")
		}
		if gotReq.TopK != 5 {
			t.Errorf("expected topK 5, got %d", gotReq.TopK)
		}
		if len(result.Matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(result.Matches))
		}
		if result.Matches[0].ID != "msg-1:0" || result.Matches[0].Score != 0.92 {
			t.Errorf("unexpected first match: %+v", result.Matches[0])
		}
		if result.Matches[1].Metadata.Subject != "Re: planning" {
			t.Errorf("metadata not decoded: %+v", result.Matches[1].Metadata)
		}
	})

	t.Run("rejects out of order scores", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"matches":[
				{"id":"a","score":0.3},
				{"id":"b","score":0.9}
			]}`)
		})

		_, err := store.Search(context.Background(), testVector(0.5), 5)
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})

	t.Run("empty index returns empty result", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"matches":[]}`)
		})

		result, err := store.Search(context.Background(), testVector(0.5), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Matches) != 0 {
			t.Errorf("expected no matches, got %d", len(result.Matches))
		}
	})

	t.Run("rejects wrong query dimension locally", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := store.Search(context.Background(), []float32{0.1}, 5)
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})

	t.Run("rejects non positive k", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := store.Search(context.Background(), testVector(0.5), 0)
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})
}

func TestStoreStats(t *testing.T) {
	t.Run("reports vector count and dimension", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/describe_index_stats" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"totalVectorCount":1234,"dimension":4}`)
		})

		stats, err := store.Stats(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.TotalVectors != 1234 {
			t.Errorf("expected 1234 vectors, got %d", stats.TotalVectors)
		}
		if stats.Dimension != 4 {
			t.Errorf("expected dimension 4, got %d", stats.Dimension)
		}
	})

	t.Run("server error wraps ErrStore", func(t *testing.T) {
		store := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})

		_, err := store.Stats(context.Background())
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})
}

func TestStorePing(t *testing.T) {
	t.Run("unreachable host wraps ErrStore", func(t *testing.T) {
		store := New(Config{
			Endpoint:  "http://127.0.0.1:1",
			APIKey:    "test-key",
			Dimension: testDimension,
		})

		err := store.Ping(context.Background())
		if !errors.Is(err, domain.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})
}
