package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch mail and index it into the vector store",
	Long: `Fetches messages matching the filter, cleans and chunks their text,
embeds each chunk and upserts the result into the vector store.

Re-running over the same messages is safe: records are keyed by
message and chunk position, so existing entries are overwritten.

Examples:
  mailrag ingest --days 30
  mailrag ingest --after 2024-01-01 --before 2024-02-01
  mailrag ingest --days 7 --label IMPORTANT --query "from:alice"`,
	RunE: runIngest,
}

// Flags for ingest.
var (
	ingestDays   int
	ingestAfter  string
	ingestBefore string
	ingestLabels []string
	ingestQuery  string
	ingestMax    int64
)

func init() {
	ingestCmd.Flags().IntVar(&ingestDays, "days", 0, "ingest messages from the last N days")
	ingestCmd.Flags().StringVar(&ingestAfter, "after", "", "ingest messages after this date (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestBefore, "before", "", "ingest messages before this date (YYYY-MM-DD)")
	ingestCmd.Flags().StringArrayVar(&ingestLabels, "label", nil, "limit to messages carrying this label (repeatable)")
	ingestCmd.Flags().StringVar(&ingestQuery, "query", "", "additional provider search query")
	ingestCmd.Flags().Int64Var(&ingestMax, "max", 0, "cap the number of messages fetched (0 = no cap)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	filter, err := buildFilter()
	if err != nil {
		return err
	}

	cmd.Println("Ingesting mail...")
	status, err := ingestService.Ingest(cmd.Context(), filter)
	if err != nil {
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			if stageErr.Item != "" {
				cmd.PrintErrf("Ingest failed at stage %q on %s: %v\n", stageErr.Stage, stageErr.Item, stageErr.Err)
			} else {
				cmd.PrintErrf("Ingest failed at stage %q: %v\n", stageErr.Stage, stageErr.Err)
			}
		}
		if status != nil {
			cmd.PrintErrf("Completed before failure: %d fetched, %d chunks embedded, %d records upserted\n",
				status.MessagesFetched, status.ChunksEmbedded, status.RecordsUpserted)
		}
		return err
	}

	cmd.Printf("Ingest complete: %d messages fetched (%d skipped), %d chunks embedded, %d records upserted.\n",
		status.MessagesFetched, status.MessagesSkipped, status.ChunksEmbedded, status.RecordsUpserted)
	return nil
}

// buildFilter translates the flags into a mail filter.
// --days and --after/--before are mutually exclusive.
func buildFilter() (domain.MailFilter, error) {
	filter := domain.MailFilter{
		LabelIDs:   ingestLabels,
		Query:      ingestQuery,
		MaxResults: ingestMax,
	}

	if ingestDays > 0 && (ingestAfter != "" || ingestBefore != "") {
		return filter, errors.New("--days cannot be combined with --after/--before")
	}

	if ingestDays > 0 {
		filter.After = time.Now().AddDate(0, 0, -ingestDays)
		return filter, nil
	}

	if ingestAfter != "" {
		t, err := time.Parse("2006-01-02", ingestAfter)
		if err != nil {
			return filter, fmt.Errorf("invalid --after date %q: expected YYYY-MM-DD", ingestAfter)
		}
		filter.After = t
	}
	if ingestBefore != "" {
		t, err := time.Parse("2006-01-02", ingestBefore)
		if err != nil {
			return filter, fmt.Errorf("invalid --before date %q: expected YYYY-MM-DD", ingestBefore)
		}
		filter.Before = t
	}
	if !filter.After.IsZero() && !filter.Before.IsZero() && filter.Before.Before(filter.After) {
		return filter, errors.New("--before must be later than --after")
	}

	return filter, nil
}
