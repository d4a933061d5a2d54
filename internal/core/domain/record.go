package domain

// EmbeddingRecord is a vector plus metadata, keyed by chunk ID.
// Once upserted it is owned by the vector store; re-upserting the
// same ID overwrites the prior vector and metadata.
type EmbeddingRecord struct {
	// ID equals the chunk ID.
	ID string

	// Vector is the embedding. Its length must equal the store's
	// configured index dimension.
	Vector []float32

	// Metadata is stored alongside the vector and returned on search.
	Metadata RecordMetadata
}

// RecordMetadata is the per-record payload kept in the vector store.
// These are the fields the answer generator needs to rebuild a context
// snippet without refetching the mail.
type RecordMetadata struct {
	MessageID string `json:"message_id"`
	Subject   string `json:"subject,omitempty"`
	From      string `json:"from,omitempty"`
	Date      string `json:"date,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	ChunkText string `json:"chunk_text"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// Match is a single similarity search hit.
type Match struct {
	// ID is the matched record's ID (a chunk ID).
	ID string

	// Score is the similarity score. Higher is more similar.
	Score float64

	// Metadata is the stored record payload.
	Metadata RecordMetadata
}

// QueryResult holds similarity search output, ordered by descending score.
// Ephemeral; produced per query and never persisted.
type QueryResult struct {
	Matches []Match
}

// IndexStats describes the remote vector index.
type IndexStats struct {
	// TotalVectors is the number of records currently in the index.
	TotalVectors int64

	// Dimension is the index's configured vector dimension.
	Dimension int
}
