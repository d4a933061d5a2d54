// Package auth implements the credential store for the Gmail account:
// an OAuth client secret file plus a token cached on disk. The token file
// is the only state this system persists locally.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	googleapi "github.com/custodia-labs/mailrag-cli/internal/connectors/google"
	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.TokenProvider = (*CredentialStore)(nil)

// CredentialStore loads and refreshes the Gmail access token.
// Refreshed tokens are written back to the token file so the next run
// starts from the freshest credential.
type CredentialStore struct {
	oauthConfig *oauth2.Config
	tokenPath   string

	mu    sync.Mutex
	token *oauth2.Token
}

// NewCredentialStore reads the OAuth client secret file and any cached
// token. A missing or malformed client secret is a configuration error;
// a missing token just means the user has not logged in yet.
func NewCredentialStore(credentialsPath, tokenPath string) (*CredentialStore, error) {
	secret, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read client credentials %s: %v", domain.ErrConfig, credentialsPath, err)
	}

	oauthConfig, err := google.ConfigFromJSON(secret, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client credentials: %v", domain.ErrConfig, err)
	}

	s := &CredentialStore{
		oauthConfig: oauthConfig,
		tokenPath:   tokenPath,
	}
	s.token = loadToken(tokenPath)
	return s, nil
}

// loadToken reads a cached token, returning nil when absent or unreadable.
func loadToken(path string) *oauth2.Token {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil
	}
	return &tok
}

// GetToken returns a valid access token, refreshing silently when the
// cached one has expired. The refreshed token is persisted.
func (s *CredentialStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return "", fmt.Errorf("%w: no cached token, run 'mailrag auth login'", domain.ErrAuth)
	}

	fresh, err := s.oauthConfig.TokenSource(ctx, s.token).Token()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: token refresh: %v", domain.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: token refresh failed, run 'mailrag auth login': %v", domain.ErrAuth, err)
	}

	if fresh.AccessToken != s.token.AccessToken {
		s.token = fresh
		if err := s.saveTokenLocked(); err != nil {
			return "", err
		}
	}

	return fresh.AccessToken, nil
}

// IsAuthenticated reports whether a usable credential is cached.
func (s *CredentialStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return false
	}
	return s.token.Valid() || s.token.RefreshToken != ""
}

// AuthURL returns the consent page URL for the login flow.
func (s *CredentialStore) AuthURL(state, redirectURL string) string {
	cfg := *s.oauthConfig
	cfg.RedirectURL = redirectURL
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange swaps an authorization code for a token and caches it.
func (s *CredentialStore) Exchange(ctx context.Context, code, redirectURL string) error {
	cfg := *s.oauthConfig
	cfg.RedirectURL = redirectURL

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: code exchange: %v", domain.ErrAuth, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	return s.saveTokenLocked()
}

// UserEmail resolves the email address of the authorised account.
func (s *CredentialStore) UserEmail(ctx context.Context) (string, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return "", err
	}

	info, err := googleapi.GetUserInfo(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	return info.Email, nil
}

// saveTokenLocked persists the current token. Caller holds s.mu.
func (s *CredentialStore) saveTokenLocked() error {
	data, err := json.Marshal(s.token)
	if err != nil {
		return fmt.Errorf("%w: encode token: %v", domain.ErrAuth, err)
	}
	if err := os.WriteFile(s.tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("%w: write token %s: %v", domain.ErrAuth, s.tokenPath, err)
	}
	return nil
}
