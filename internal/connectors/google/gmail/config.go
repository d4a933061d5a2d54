// Package gmail implements the MailConnector port against the Gmail API.
package gmail

import "time"

// Config holds Gmail connector configuration.
type Config struct {
	// UserID is the mailbox to read; "me" means the authenticated user.
	UserID string

	// PageSize is the page size for list requests.
	PageSize int64

	// IncludeSpamTrash includes spam and trash if true.
	IncludeSpamTrash bool

	// Timeout bounds each individual API call.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		UserID:   "me",
		PageSize: 100,
		Timeout:  30 * time.Second,
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserID == "" {
		c.UserID = def.UserID
	}
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
