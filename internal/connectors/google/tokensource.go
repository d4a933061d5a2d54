package google

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
)

// TokenSourceAdapter adapts the core TokenProvider port to oauth2.TokenSource
// so Gmail API clients can use the credential store's token management.
type TokenSourceAdapter struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
// Pass the result to option.WithTokenSource() when building the service.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
// Called by Gmail API clients when they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
