package domain

import "time"

// Message represents a raw mail message fetched from the provider.
// It is immutable once fetched and is discarded after chunking;
// this system never persists messages itself.
type Message struct {
	// ID is the provider-assigned message identifier.
	ID string

	// ThreadID groups messages belonging to the same conversation.
	ThreadID string

	// Subject is the decoded Subject header.
	Subject string

	// From is the decoded From header.
	From string

	// Snippet is the provider's short preview of the message.
	Snippet string

	// Labels are the provider label IDs attached to the message.
	Labels []string

	// Timestamp is when the message was received.
	Timestamp time.Time

	// Raw is the full RFC 2822 message as fetched from the provider.
	Raw []byte
}

// MailFilter selects which messages to fetch.
type MailFilter struct {
	// After limits results to messages received after this time (zero = unbounded).
	After time.Time

	// Before limits results to messages received before this time (zero = unbounded).
	Before time.Time

	// LabelIDs limits results to messages carrying any of these labels.
	LabelIDs []string

	// Query is a free-form provider search query appended to the date terms.
	Query string

	// MaxResults caps the total number of messages fetched (0 = provider default).
	MaxResults int64
}
