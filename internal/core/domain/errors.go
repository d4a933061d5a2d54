package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures by category.
// Adapters wrap the underlying cause with one of these sentinels so the
// drivers and the CLI can classify failures with errors.Is.
var (
	// ErrConfig indicates invalid or missing configuration.
	// Fatal; raised at startup before any network call.
	ErrConfig = errors.New("invalid configuration")

	// ErrAuth indicates invalid or expired mail credentials.
	// Fatal for the current run; the user must re-authenticate.
	ErrAuth = errors.New("authentication failed")

	// ErrProvider indicates a mail provider transport or rate-limit failure.
	ErrProvider = errors.New("mail provider error")

	// ErrEmbedding indicates the embedding service failed or returned
	// a vector of unexpected dimension.
	ErrEmbedding = errors.New("embedding service error")

	// ErrStore indicates a vector store transport or request failure.
	ErrStore = errors.New("vector store error")

	// ErrGeneration indicates the language model failed or returned
	// empty output.
	ErrGeneration = errors.New("answer generation error")

	// ErrTimeout indicates an external call exceeded its deadline.
	// Treated as transient; a rerun is safe.
	ErrTimeout = errors.New("operation timed out")
)

// Stage identifies a pipeline stage for failure reporting.
type Stage string

// Ingest flow stages.
const (
	StageFetching    Stage = "fetching"
	StageNormalising Stage = "normalising"
	StageChunking    Stage = "chunking"
	StageEmbedding   Stage = "embedding"
	StageUpserting   Stage = "upserting"
)

// Query flow stages.
const (
	StageEmbeddingQuery Stage = "embedding-query"
	StageSearching      Stage = "searching"
	StageGenerating     Stage = "generating"
)

// StageError records where a pipeline run failed and on which item,
// so a manual rerun can be targeted. No stage swallows an error; every
// failure aborts the flow wrapped in one of these.
type StageError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage

	// Item identifies what was being processed (message ID, chunk ID,
	// or the query text). Empty when no single item applies.
	Item string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("stage %s (item %s): %v", e.Stage, e.Item, e.Err)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with stage and item context.
func NewStageError(stage Stage, item string, err error) *StageError {
	return &StageError{Stage: stage, Item: item, Err: err}
}
