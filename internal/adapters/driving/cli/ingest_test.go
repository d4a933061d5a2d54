package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driving"
)

// cliMockIngestor implements driving.Ingestor for testing.
type cliMockIngestor struct {
	status    *driving.IngestStatus
	err       error
	gotFilter domain.MailFilter
}

func (m *cliMockIngestor) Ingest(_ context.Context, filter domain.MailFilter) (*driving.IngestStatus, error) {
	m.gotFilter = filter
	return m.status, m.err
}

func resetIngestFlags() {
	ingestDays = 0
	ingestAfter = ""
	ingestBefore = ""
	ingestLabels = nil
	ingestQuery = ""
	ingestMax = 0
}

func TestBuildFilter(t *testing.T) {
	t.Run("days sets after bound", func(t *testing.T) {
		resetIngestFlags()
		ingestDays = 7

		filter, err := buildFilter()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), filter.After, time.Minute)
		assert.True(t, filter.Before.IsZero())
	})

	t.Run("explicit date range", func(t *testing.T) {
		resetIngestFlags()
		ingestAfter = "2024-01-01"
		ingestBefore = "2024-02-01"

		filter, err := buildFilter()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filter.After)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), filter.Before)
	})

	t.Run("days and dates conflict", func(t *testing.T) {
		resetIngestFlags()
		ingestDays = 7
		ingestAfter = "2024-01-01"

		_, err := buildFilter()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be combined")
	})

	t.Run("malformed date", func(t *testing.T) {
		resetIngestFlags()
		ingestAfter = "01/02/2024"

		_, err := buildFilter()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("inverted range", func(t *testing.T) {
		resetIngestFlags()
		ingestAfter = "2024-02-01"
		ingestBefore = "2024-01-01"

		_, err := buildFilter()
		require.Error(t, err)
	})

	t.Run("labels query and max carried through", func(t *testing.T) {
		resetIngestFlags()
		ingestLabels = []string{"IMPORTANT"}
		ingestQuery = "from:alice"
		ingestMax = 50

		filter, err := buildFilter()
		require.NoError(t, err)
		assert.Equal(t, []string{"IMPORTANT"}, filter.LabelIDs)
		assert.Equal(t, "from:alice", filter.Query)
		assert.Equal(t, int64(50), filter.MaxResults)
	})
}

func TestRunIngest(t *testing.T) {
	t.Run("reports counts on success", func(t *testing.T) {
		resetIngestFlags()
		mock := &cliMockIngestor{status: &driving.IngestStatus{
			MessagesFetched: 3,
			ChunksEmbedded:  7,
			RecordsUpserted: 7,
		}}
		ingestService = mock
		defer func() { ingestService = nil }()

		var out bytes.Buffer
		ingestCmd.SetOut(&out)
		ingestCmd.SetErr(&out)

		err := runIngest(ingestCmd, nil)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "3 messages fetched")
		assert.Contains(t, out.String(), "7 records upserted")
	})

	t.Run("reports stage and partial progress on failure", func(t *testing.T) {
		resetIngestFlags()
		mock := &cliMockIngestor{
			status: &driving.IngestStatus{MessagesFetched: 2, ChunksEmbedded: 1},
			err: domain.NewStageError(domain.StageEmbedding, "msg-1:0",
				fmt.Errorf("%w: connection refused", domain.ErrEmbedding)),
		}
		ingestService = mock
		defer func() { ingestService = nil }()

		var out, errOut bytes.Buffer
		ingestCmd.SetOut(&out)
		ingestCmd.SetErr(&errOut)

		err := runIngest(ingestCmd, nil)
		require.Error(t, err)
		assert.Contains(t, errOut.String(), "embedding")
		assert.Contains(t, errOut.String(), "msg-1:0")
		assert.Contains(t, errOut.String(), "2 fetched")
	})

	t.Run("fails when service missing", func(t *testing.T) {
		ingestService = nil
		err := runIngest(ingestCmd, nil)
		require.Error(t, err)
	})
}
