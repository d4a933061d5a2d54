package driven

import "context"

// TokenProvider provides access tokens for authenticated provider calls.
// Implementations handle token refresh transparently: if the cached token
// is expired, GetToken refreshes and re-persists it before returning.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated reports whether a usable credential is on disk.
	IsAuthenticated() bool
}
