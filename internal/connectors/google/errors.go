package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapError classifies a Gmail API failure into the domain taxonomy while
// keeping the underlying cause in the message. 401/403 become ErrAuth (the
// run is over, re-authenticate); deadline expiry becomes ErrTimeout;
// everything else is a provider error that a manual rerun may clear.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %v", domain.ErrAuth, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
}
