package domain

// Document is a normalised message: headers worth keeping plus the
// cleaned body text. It is the chunker's input.
type Document struct {
	// MessageID links back to the Message that produced this document.
	MessageID string

	// ThreadID groups messages of the same conversation.
	ThreadID string

	// Subject is the message subject.
	Subject string

	// From is the sender.
	From string

	// Date is the original Date header value.
	Date string

	// Snippet is the provider preview, carried through for metadata.
	Snippet string

	// Content is the full cleaned text (headers block plus body).
	Content string
}

// Chunk is a bounded-size slice of a document's text, the unit of embedding.
// Chunk IDs are deterministic ("<messageID>:<position>") so that re-ingesting
// the same message overwrites rather than duplicates.
type Chunk struct {
	// ID is "<messageID>:<position>".
	ID string

	// MessageID links to the source message.
	MessageID string

	// Content is the chunk text. Never empty.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// TokenCount is the tokenizer-measured size of Content.
	TokenCount int
}
