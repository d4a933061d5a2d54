package gmail

import (
	"context"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/mailrag-cli/internal/connectors/google"
	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/mailrag-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.MailConnector = (*Connector)(nil)

// Connector fetches messages from Gmail.
type Connector struct {
	service *gmailapi.Service
	cfg     Config
	limiter *google.RateLimiter
}

// New creates a Gmail connector around an authenticated service.
func New(service *gmailapi.Service, cfg Config) *Connector {
	return &Connector{
		service: service,
		cfg:     cfg.withDefaults(),
		limiter: google.NewRateLimiter(),
	}
}

// Validate makes a lightweight profile call to verify credentials.
func (c *Connector) Validate(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	_, err := c.service.Users.GetProfile(c.cfg.UserID).Context(callCtx).Do()
	return google.WrapError(err)
}

// Fetch streams messages matching the filter. Listing is paginated with
// provider-side cursors that live only for this call; each listed ID is
// fetched in raw format so the normaliser sees the full RFC 2822 payload.
func (c *Connector) Fetch(ctx context.Context, filter domain.MailFilter) (<-chan domain.Message, <-chan error) {
	msgCh := make(chan domain.Message)
	errCh := make(chan error, 1)

	go func() {
		defer close(msgCh)
		defer close(errCh)

		query := BuildQuery(filter)
		logger.Debug("gmail: listing messages, query=%q labels=%v", query, filter.LabelIDs)

		pageToken := ""
		var fetched int64

		for {
			page, err := c.listPage(ctx, filter, query, pageToken)
			if err != nil {
				errCh <- err
				return
			}

			for _, ref := range page.Messages {
				if filter.MaxResults > 0 && fetched >= filter.MaxResults {
					return
				}

				full, err := c.getMessage(ctx, ref.Id)
				if err != nil {
					errCh <- err
					return
				}
				if !ShouldFetch(full, c.cfg) {
					continue
				}

				select {
				case msgCh <- ToMessage(full):
					fetched++
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}

			if page.NextPageToken == "" {
				return
			}
			pageToken = page.NextPageToken
		}
	}()

	return msgCh, errCh
}

// listPage fetches one page of message references.
func (c *Connector) listPage(
	ctx context.Context,
	filter domain.MailFilter,
	query, pageToken string,
) (*gmailapi.ListMessagesResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	call := c.service.Users.Messages.List(c.cfg.UserID).
		MaxResults(c.cfg.PageSize).
		IncludeSpamTrash(c.cfg.IncludeSpamTrash).
		Context(callCtx)
	if query != "" {
		call = call.Q(query)
	}
	if len(filter.LabelIDs) > 0 {
		call = call.LabelIds(filter.LabelIDs...)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	page, err := call.Do()
	if err != nil {
		if google.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, google.WrapError(err)
	}
	return page, nil
}

// getMessage fetches a single message in raw format.
func (c *Connector) getMessage(ctx context.Context, id string) (*gmailapi.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	msg, err := c.service.Users.Messages.Get(c.cfg.UserID, id).
		Format("raw").
		Context(callCtx).
		Do()
	if err != nil {
		if google.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, google.WrapError(err)
	}
	return msg, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
