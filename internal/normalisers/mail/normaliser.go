package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/inbucket/html2text"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser turns a raw RFC 2822 message into a clean text document.
// It prefers text/plain parts, converts HTML when that is all there is,
// and strips quoted-reply noise so chunks carry new content only.
type Normaliser struct{}

// New creates a new mail normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// onWroteLine matches reply attribution lines like "On Mon, Jan 2 ... wrote:".
var onWroteLine = regexp.MustCompile(`(?i)^On .{0,200}wrote:\s*$`)

// Normalise parses the message payload and returns the chunker's input.
// The result is deterministic: the same message always yields the same
// document.
func (n *Normaliser) Normalise(_ context.Context, msg *domain.Message) (*domain.Document, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", domain.ErrProvider)
	}

	body := ""
	date := ""
	if len(msg.Raw) > 0 {
		parsed, err := mail.ReadMessage(bytes.NewReader(msg.Raw))
		if err != nil {
			return nil, fmt.Errorf("%w: parse message %s: %v", domain.ErrProvider, msg.ID, err)
		}
		date = parsed.Header.Get("Date")
		body = extractBody(parsed)
	}
	if date == "" && !msg.Timestamp.IsZero() {
		date = msg.Timestamp.Format("Mon, 02 Jan 2006 15:04:05 -0700")
	}

	body = stripQuotedReplies(body)
	body = collapseWhitespace(body)

	// A message with no usable body still gets indexed: the headers alone
	// can answer "who emailed me about X".
	content := headerBlock(msg, date)
	if body != "" {
		content += "\n" + body
	}

	return &domain.Document{
		MessageID: msg.ID,
		ThreadID:  msg.ThreadID,
		Subject:   msg.Subject,
		From:      msg.From,
		Date:      date,
		Snippet:   msg.Snippet,
		Content:   content,
	}, nil
}

// headerBlock renders the headers that give chunks retrieval context.
func headerBlock(msg *domain.Message, date string) string {
	var b strings.Builder
	if msg.From != "" {
		b.WriteString("From: ")
		b.WriteString(msg.From)
		b.WriteString("\n")
	}
	if date != "" {
		b.WriteString("Date: ")
		b.WriteString(date)
		b.WriteString("\n")
	}
	if msg.Subject != "" {
		b.WriteString("Subject: ")
		b.WriteString(msg.Subject)
		b.WriteString("\n")
	}
	return b.String()
}

// extractBody pulls the best available text from the message body.
func extractBody(msg *mail.Message) string {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		raw, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return ""
		}
		return string(raw)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(msg.Body, params["boundary"])
	}

	raw := decodePart(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	if mediaType == "text/html" {
		return htmlToText(raw)
	}
	return raw
}

// extractMultipartBody walks the parts preferring text/plain over HTML.
// Nested multiparts (multipart/alternative inside multipart/mixed) are
// handled recursively; attachments are skipped.
func extractMultipartBody(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}
		if disp := part.Header.Get("Content-Disposition"); strings.HasPrefix(disp, "attachment") {
			part.Close()
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, decodePart(part, part.Header.Get("Content-Transfer-Encoding")))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, htmlToText(decodePart(part, part.Header.Get("Content-Transfer-Encoding"))))
		case strings.HasPrefix(mediaType, "multipart/"):
			content, readErr := io.ReadAll(part)
			if readErr == nil {
				if nested := extractMultipartBody(bytes.NewReader(content), params["boundary"]); nested != "" {
					textParts = append(textParts, nested)
				}
			}
		}
		part.Close()
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n")
	}
	return strings.Join(htmlParts, "\n")
}

// decodePart reads a body part, undoing its transfer encoding.
func decodePart(r io.Reader, encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, newBase64Cleaner(r))
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		// Keep whatever decoded cleanly; truncated parts are common.
		return string(raw)
	}
	return string(raw)
}

// htmlToText converts an HTML part to plain text.
func htmlToText(s string) string {
	text, err := html2text.FromString(s, html2text.Options{
		OmitLinks: true,
	})
	if err != nil {
		return s
	}
	return text
}

// stripQuotedReplies drops quoted previous-message text: ">"-prefixed
// lines and everything from an "On ... wrote:" attribution onwards.
func stripQuotedReplies(body string) string {
	lines := strings.Split(body, "\n")
	var kept []string
	for _, line := range lines {
		if onWroteLine.MatchString(strings.TrimSpace(line)) {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// collapseWhitespace trims trailing space from lines and squeezes runs
// of blank lines down to one.
func collapseWhitespace(body string) string {
	lines := strings.Split(body, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// base64Cleaner strips whitespace so wrapped base64 bodies decode.
type base64Cleaner struct {
	r io.Reader
}

func newBase64Cleaner(r io.Reader) *base64Cleaner {
	return &base64Cleaner{r: r}
}

func (c *base64Cleaner) Read(p []byte) (int, error) {
	buf := make([]byte, len(p))
	n, err := c.r.Read(buf)
	j := 0
	for _, b := range buf[:n] {
		switch b {
		case '\n', '\r', ' ', '\t':
			continue
		default:
			p[j] = b
			j++
		}
	}
	return j, err
}
