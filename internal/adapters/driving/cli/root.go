// Package cli provides the cobra command surface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired in by the entry point before Execute runs.
var (
	ingestService driving.Ingestor
	answerService driving.Answerer
	authenticator Authenticator
)

// Authenticator runs the interactive OAuth login flow.
type Authenticator interface {
	// AuthURL returns the provider consent URL for the given state and
	// redirect target.
	AuthURL(state, redirectURL string) string

	// Exchange trades the authorization code for a token and caches it.
	Exchange(ctx context.Context, code, redirectURL string) error

	// IsAuthenticated reports whether a cached token exists.
	IsAuthenticated() bool

	// UserEmail resolves the email address of the authorised account.
	UserEmail(ctx context.Context) (string, error)
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mailrag",
	Short: "Ask questions about your mailbox from the terminal",
	Long: `mailrag indexes your Gmail into a vector store and answers
questions about it using a local language model.

Run 'mailrag auth login' once to authorise mailbox access, then
'mailrag ingest' to index messages and 'mailrag query' to ask.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")
}

// SetServices wires the pipeline drivers into the command tree.
func SetServices(ingestor driving.Ingestor, answerer driving.Answerer, auth Authenticator) {
	ingestService = ingestor
	answerService = answerer
	authenticator = auth
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
