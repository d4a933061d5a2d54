package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStageError_Error(t *testing.T) {
	t.Run("with item", func(t *testing.T) {
		err := NewStageError(StageEmbedding, "msg-42:0", ErrEmbedding)
		msg := err.Error()
		if !strings.Contains(msg, "embedding") {
			t.Errorf("expected stage name in message, got %q", msg)
		}
		if !strings.Contains(msg, "msg-42:0") {
			t.Errorf("expected item in message, got %q", msg)
		}
	})

	t.Run("without item", func(t *testing.T) {
		err := NewStageError(StageSearching, "", ErrStore)
		if strings.Contains(err.Error(), "item") {
			t.Errorf("unexpected item clause in %q", err.Error())
		}
	})
}

func TestStageError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", ErrStore)
	err := NewStageError(StageUpserting, "msg-1:2", cause)

	if !errors.Is(err, ErrStore) {
		t.Error("expected errors.Is to find ErrStore through StageError")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatal("expected errors.As to find StageError")
	}
	if stageErr.Stage != StageUpserting {
		t.Errorf("expected stage %q, got %q", StageUpserting, stageErr.Stage)
	}
}
