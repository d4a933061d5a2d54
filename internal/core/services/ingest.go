package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// Metadata field limits, so a record stays well under the store's
// per-record metadata cap.
const (
	metadataSnippetLimit = 500
	metadataChunkLimit   = 1000
)

// IngestService drives the ingest flow:
// fetch → normalise → chunk → embed → upsert.
//
// The flow is linear and fail-fast: the first error aborts the run
// wrapped in a StageError naming the stage and item, and the returned
// status reports how far the run got. Rerunning after a failure is safe
// because chunk IDs are deterministic and upserts overwrite by ID.
type IngestService struct {
	connector  driven.MailConnector
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	store      driven.VectorStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	connector driven.MailConnector,
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		connector:  connector,
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		store:      store,
	}
}

// Ingest processes all messages matching the filter.
// The returned status is valid even when err is non-nil.
//
// Both ends of the pipeline are checked before any message is fetched,
// so a dead mailbox session or an unreachable index fails the run
// before embedding work is spent.
func (s *IngestService) Ingest(ctx context.Context, filter domain.MailFilter) (*driving.IngestStatus, error) {
	status := &driving.IngestStatus{}

	if err := s.connector.Validate(ctx); err != nil {
		return status, domain.NewStageError(domain.StageFetching, "", err)
	}
	if err := s.store.Ping(ctx); err != nil {
		return status, domain.NewStageError(domain.StageUpserting, "", err)
	}

	logger.Stage("Fetching messages")
	chunks, docs, err := s.collectChunks(ctx, filter, status)
	if err != nil {
		return status, err
	}

	if len(chunks) == 0 {
		// Zero matching messages is a successful run, not an error.
		logger.Info("Nothing to ingest (%d fetched, %d skipped)", status.MessagesFetched, status.MessagesSkipped)
		return status, nil
	}

	logger.Stage("Embedding chunks")
	records, err := s.embedChunks(ctx, chunks, docs, status)
	if err != nil {
		return status, err
	}

	logger.Stage("Upserting records")
	if err := ctx.Err(); err != nil {
		return status, domain.NewStageError(domain.StageUpserting, "", fmt.Errorf("%w: %v", domain.ErrTimeout, err))
	}
	accepted, err := s.store.Upsert(ctx, records)
	status.RecordsUpserted = accepted
	if err != nil {
		return status, domain.NewStageError(domain.StageUpserting, "", err)
	}

	logger.Info("Ingest complete: %d messages, %d chunks, %d records",
		status.MessagesFetched, status.ChunksEmbedded, status.RecordsUpserted)
	return status, nil
}

// collectChunks streams messages from the connector and runs each one
// through normalise and chunk as it arrives. Returns all chunks plus
// the document each chunk came from, keyed by message ID.
func (s *IngestService) collectChunks(
	ctx context.Context,
	filter domain.MailFilter,
	status *driving.IngestStatus,
) ([]domain.Chunk, map[string]*domain.Document, error) {
	msgCh, errCh := s.connector.Fetch(ctx, filter)

	var chunks []domain.Chunk
	docs := make(map[string]*domain.Document)

	// Both channels must drain before the fetch counts as clean: the
	// connector may buffer its terminal error, and select picks a ready
	// case at random, so the message channel can close first.
	for msgCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, nil, domain.NewStageError(domain.StageFetching, "",
				fmt.Errorf("%w: %v", domain.ErrTimeout, ctx.Err()))

		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, nil, domain.NewStageError(domain.StageFetching, "", err)
			}

		case msg, ok := <-msgCh:
			if !ok {
				msgCh = nil
				continue
			}
			status.MessagesFetched++
			logger.Debug("Processing message %s (%s)", msg.ID, msg.Subject)

			doc, err := s.normaliser.Normalise(ctx, &msg)
			if err != nil {
				return nil, nil, domain.NewStageError(domain.StageNormalising, msg.ID, err)
			}

			msgChunks, err := s.pipeline.Process(ctx, doc)
			if err != nil {
				return nil, nil, domain.NewStageError(domain.StageChunking, msg.ID, err)
			}
			if len(msgChunks) == 0 {
				status.MessagesSkipped++
				logger.Debug("Message %s produced no chunks, skipping", msg.ID)
				continue
			}

			docs[msg.ID] = doc
			chunks = append(chunks, msgChunks...)
		}
	}

	return chunks, docs, nil
}

// embedChunks turns every chunk into an embedding record.
func (s *IngestService) embedChunks(
	ctx context.Context,
	chunks []domain.Chunk,
	docs map[string]*domain.Document,
	status *driving.IngestStatus,
) ([]domain.EmbeddingRecord, error) {
	records := make([]domain.EmbeddingRecord, 0, len(chunks))

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewStageError(domain.StageEmbedding, chunk.ID,
				fmt.Errorf("%w: %v", domain.ErrTimeout, err))
		}

		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, domain.NewStageError(domain.StageEmbedding, chunk.ID, err)
		}
		status.ChunksEmbedded++

		records = append(records, domain.EmbeddingRecord{
			ID:       chunk.ID,
			Vector:   vector,
			Metadata: buildMetadata(chunk, docs[chunk.MessageID]),
		})
	}

	return records, nil
}

// buildMetadata assembles the per-record payload the answer flow needs
// to rebuild a context snippet without refetching the mail.
func buildMetadata(chunk domain.Chunk, doc *domain.Document) domain.RecordMetadata {
	meta := domain.RecordMetadata{
		MessageID: chunk.MessageID,
		ChunkText: truncate(chunk.Content, metadataChunkLimit),
	}
	if doc != nil {
		meta.Subject = doc.Subject
		meta.From = doc.From
		meta.Date = doc.Date
		meta.Snippet = truncate(doc.Snippet, metadataSnippetLimit)
		meta.ThreadID = doc.ThreadID
	}
	return meta
}

// truncate cuts s to at most limit bytes without splitting a rune,
// so truncated metadata stays valid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
