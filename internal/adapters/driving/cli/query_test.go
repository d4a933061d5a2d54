package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// cliMockAnswerer implements driving.Answerer for testing.
type cliMockAnswerer struct {
	answer      *domain.Answer
	err         error
	stats       *domain.IndexStats
	statsErr    error
	gotQuestion string
}

func (m *cliMockAnswerer) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.gotQuestion = question
	return m.answer, m.err
}

func (m *cliMockAnswerer) IndexStats(_ context.Context) (*domain.IndexStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.IndexStats{}, nil
}

func TestRunQuery(t *testing.T) {
	t.Run("prints the answer", func(t *testing.T) {
		querySources = false
		mock := &cliMockAnswerer{answer: &domain.Answer{
			Question: "When are we meeting?",
			Text:     "You are meeting at noon on Friday.",
		}}
		answerService = mock
		defer func() { answerService = nil }()

		var out bytes.Buffer
		queryCmd.SetOut(&out)
		queryCmd.SetErr(&out)

		err := runQuery(queryCmd, []string{"When are we meeting?"})
		require.NoError(t, err)
		assert.Equal(t, "When are we meeting?", mock.gotQuestion)
		assert.Contains(t, out.String(), "noon on Friday")
	})

	t.Run("lists sources when asked", func(t *testing.T) {
		querySources = true
		defer func() { querySources = false }()
		answerService = &cliMockAnswerer{answer: &domain.Answer{
			Text: "answer",
			Sources: []domain.Match{{
				ID:    "msg-1:0",
				Score: 0.91,
				Metadata: domain.RecordMetadata{
					Subject: "Lunch",
					From:    "alice@example.com",
					Date:    "Mon, 01 Jan 2024",
				},
			}},
		}}
		defer func() { answerService = nil }()

		var out bytes.Buffer
		queryCmd.SetOut(&out)
		queryCmd.SetErr(&out)

		err := runQuery(queryCmd, []string{"lunch?"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Sources:")
		assert.Contains(t, out.String(), "Lunch")
		assert.Contains(t, out.String(), "alice@example.com")
	})

	t.Run("surfaces stage failure without printing an answer", func(t *testing.T) {
		querySources = false
		answerService = &cliMockAnswerer{
			err: domain.NewStageError(domain.StageSearching, "q",
				fmt.Errorf("%w: connection refused", domain.ErrStore)),
		}
		defer func() { answerService = nil }()

		var out, errOut bytes.Buffer
		queryCmd.SetOut(&out)
		queryCmd.SetErr(&errOut)

		err := runQuery(queryCmd, []string{"When are we meeting?"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "searching")
	})

	t.Run("interactive session shows index size", func(t *testing.T) {
		querySources = false
		mock := &cliMockAnswerer{
			stats:  &domain.IndexStats{TotalVectors: 42},
			answer: &domain.Answer{Text: "You are meeting at noon on Friday."},
		}
		answerService = mock
		defer func() { answerService = nil }()

		var out bytes.Buffer
		queryCmd.SetOut(&out)
		queryCmd.SetErr(&out)
		queryCmd.SetIn(strings.NewReader("When are we meeting?\nquit\n"))

		err := runQuery(queryCmd, nil)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Index ready: 42 vectors.")
		assert.Contains(t, out.String(), "noon on Friday")
		assert.Equal(t, "When are we meeting?", mock.gotQuestion)
	})

	t.Run("interactive session survives missing stats", func(t *testing.T) {
		querySources = false
		answerService = &cliMockAnswerer{
			statsErr: fmt.Errorf("%w: connection refused", domain.ErrStore),
		}
		defer func() { answerService = nil }()

		var out bytes.Buffer
		queryCmd.SetOut(&out)
		queryCmd.SetErr(&out)
		queryCmd.SetIn(strings.NewReader("exit\n"))

		err := runQuery(queryCmd, nil)
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "Index ready")
	})

	t.Run("fails when service missing", func(t *testing.T) {
		answerService = nil
		err := runQuery(queryCmd, []string{"anything"})
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)

	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "mailrag version")
}
