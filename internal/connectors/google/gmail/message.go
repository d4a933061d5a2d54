package gmail

import (
	"bytes"
	"encoding/base64"
	"mime"
	"net/mail"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// ToMessage converts a Gmail API message to a domain Message.
// With Format("raw"), msg.Raw carries the base64url-encoded RFC 2822
// payload; Subject and From are read from its headers.
func ToMessage(msg *gmailapi.Message) domain.Message {
	rawBytes, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		// Undecodable payload: keep the metadata, drop the body.
		rawBytes = nil
	}

	subject, from := readHeaders(rawBytes)

	return domain.Message{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Subject:   subject,
		From:      from,
		Snippet:   msg.Snippet,
		Labels:    msg.LabelIds,
		Timestamp: time.UnixMilli(msg.InternalDate).UTC(),
		Raw:       rawBytes,
	}
}

// readHeaders extracts the decoded Subject and From headers.
func readHeaders(raw []byte) (subject, from string) {
	if len(raw) == 0 {
		return "", ""
	}
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", ""
	}
	return decodeHeader(parsed.Header.Get("Subject")), decodeHeader(parsed.Header.Get("From"))
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// ShouldFetch checks whether a listed message belongs in the ingest.
func ShouldFetch(msg *gmailapi.Message, cfg Config) bool {
	if !cfg.IncludeSpamTrash && isSpamOrTrash(msg.LabelIds) {
		return false
	}
	return true
}

// isSpamOrTrash checks if the message carries spam or trash labels.
func isSpamOrTrash(labels []string) bool {
	for _, label := range labels {
		if label == "SPAM" || label == "TRASH" {
			return true
		}
	}
	return false
}
