package cli

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mailrag-cli/internal/adapters/driving/oauth"
)

// loginTimeout bounds how long we wait for the browser consent flow.
const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage mailbox authorisation",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise mailbox access via the browser",
	Long: `Runs the OAuth consent flow: opens the provider's consent page in
your browser, receives the authorization code on a local callback
server, and caches the resulting token for subsequent runs.`,
	RunE: runAuthLogin,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authenticator == nil {
		return errors.New("authenticator not configured")
	}

	if authenticator.IsAuthenticated() {
		cmd.Println("Already authorised. Re-running the consent flow to refresh the token.")
	}

	state := uuid.New().String()
	server := oauth.NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop() //nolint:errcheck // best-effort shutdown

	url := authenticator.AuthURL(state, server.RedirectURI())
	if err := oauth.OpenBrowser(url); err != nil {
		cmd.Println("Could not open a browser automatically.")
	}
	cmd.Println("Complete the consent flow in your browser. If it did not open, visit:")
	cmd.Printf("\n  %s\n\n", url)

	code, err := server.WaitForCode(loginTimeout)
	if err != nil {
		return err
	}

	if err := authenticator.Exchange(cmd.Context(), code, server.RedirectURI()); err != nil {
		return err
	}

	if email, err := authenticator.UserEmail(cmd.Context()); err == nil {
		cmd.Printf("Authorised as %s. Token cached.\n", email)
	} else {
		cmd.Println("Authorisation complete. Token cached.")
	}
	return nil
}
