package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your indexed mail",
	Long: `Answers a question using the indexed mail as context.

With a question argument the answer is printed and the command exits.
Without one, an interactive loop reads questions until "quit" or "exit".

Examples:
  mailrag query "When is the team offsite?"
  mailrag query`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

// Flag for query.
var querySources bool

func init() {
	queryCmd.Flags().BoolVar(&querySources, "sources", false, "list the source messages under the answer")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	if len(args) == 1 {
		return answerOne(cmd, args[0])
	}

	// Interactive loop.
	printIndexBanner(cmd)
	cmd.Println("Ask questions about your mail. Type \"quit\" or \"exit\" to leave.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		if err := answerOne(cmd, question); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
}

// printIndexBanner shows what the session will answer against.
// Best-effort: an unreachable index surfaces on the first question anyway.
func printIndexBanner(cmd *cobra.Command) {
	stats, err := answerService.IndexStats(cmd.Context())
	if err != nil {
		logger.Warn("index stats unavailable: %v", err)
		return
	}
	cmd.Printf("Index ready: %d vectors.\n", stats.TotalVectors)
}

func answerOne(cmd *cobra.Command, question string) error {
	answer, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			cmd.PrintErrf("Query failed at stage %q: %v\n", stageErr.Stage, stageErr.Err)
		}
		return err
	}

	cmd.Println(answer.Text)

	if querySources && len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, src := range answer.Sources {
			subject := src.Metadata.Subject
			if subject == "" {
				subject = "(no subject)"
			}
			cmd.Printf("  %.3f  %s - %s (%s)\n", src.Score, subject, src.Metadata.From, src.Metadata.Date)
		}
	}

	return nil
}
