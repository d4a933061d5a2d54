package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

func testMessage(raw string) *domain.Message {
	return &domain.Message{
		ID:        "msg-1",
		ThreadID:  "thread-1",
		Subject:   "Test Email Subject",
		From:      "Alice <alice@example.com>",
		Snippet:   "This is the body",
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Raw:       []byte(raw),
	}
}

func TestNormalise_NilMessage(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Nil(t, doc)
}

func TestNormalise_PlainText(t *testing.T) {
	normaliser := New()

	raw := "From: Alice <alice@example.com>\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Test Email Subject\r\n" +
		"Date: Mon, 01 Jan 2024 10:00:00 +0000\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"This is the body of the email.\r\n" +
		"It has multiple lines.\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "msg-1", doc.MessageID)
	assert.Equal(t, "Test Email Subject", doc.Subject)
	assert.Equal(t, "Alice <alice@example.com>", doc.From)
	assert.Equal(t, "Mon, 01 Jan 2024 10:00:00 +0000", doc.Date)
	assert.Contains(t, doc.Content, "Subject: Test Email Subject")
	assert.Contains(t, doc.Content, "This is the body of the email.")
	assert.Contains(t, doc.Content, "It has multiple lines.")
}

func TestNormalise_Deterministic(t *testing.T) {
	normaliser := New()
	msg := testMessage("From: a@example.com\r\nContent-Type: text/plain\r\n\r\nHello.\r\n")

	first, err := normaliser.Normalise(context.Background(), msg)
	require.NoError(t, err)
	second, err := normaliser.Normalise(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalise_MultipartPrefersPlainText(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Subject: Test Email Subject\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Plain version.\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<html><body><p>HTML version.</p></body></html>\r\n" +
		"--XYZ--\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Plain version.")
	assert.NotContains(t, doc.Content, "HTML version.")
	assert.NotContains(t, doc.Content, "<p>")
}

func TestNormalise_HTMLOnly(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Subject: Test Email Subject\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<html><body><h1>Heading</h1><p>Paragraph text here.</p></body></html>\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Paragraph text here.")
	assert.NotContains(t, doc.Content, "<body>")
	assert.NotContains(t, doc.Content, "<p>")
}

func TestNormalise_QuotedPrintable(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Caf=C3=A9 meeting at noon.\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Café meeting at noon.")
}

func TestNormalise_Base64Body(t *testing.T) {
	normaliser := New()

	// "Hello from base64." split across lines as senders do.
	raw := "From: alice@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"SGVsbG8gZnJvbSBi\r\n" +
		"YXNlNjQu\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Hello from base64.")
}

func TestNormalise_StripsQuotedReplies(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Sounds good, see you then.\r\n" +
		"\r\n" +
		"On Mon, Jan 1, 2024 at 9:00 AM Bob <bob@example.com> wrote:\r\n" +
		"> Are we still on for lunch?\r\n" +
		"> Let me know.\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Sounds good, see you then.")
	assert.NotContains(t, doc.Content, "Are we still on for lunch?")
	assert.NotContains(t, doc.Content, "wrote:")
}

func TestNormalise_EmptyBodyKeepsHeaders(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Subject: Test Email Subject\r\n" +
		"Date: Mon, 01 Jan 2024 10:00:00 +0000\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Subject: Test Email Subject")
	assert.Contains(t, doc.Content, "From: Alice <alice@example.com>")
	assert.NotEmpty(t, doc.Content)
}

func TestNormalise_MalformedPayload(t *testing.T) {
	normaliser := New()

	doc, err := normaliser.Normalise(context.Background(), testMessage("not an rfc 2822 message"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Nil(t, doc)
}

func TestNormalise_MissingRawFallsBackToTimestamp(t *testing.T) {
	normaliser := New()
	msg := testMessage("")
	msg.Raw = nil

	doc, err := normaliser.Normalise(context.Background(), msg)
	require.NoError(t, err)

	assert.Contains(t, doc.Date, "2024")
	assert.Contains(t, doc.Content, "Subject: Test Email Subject")
}

func TestNormalise_CollapsesBlankRuns(t *testing.T) {
	normaliser := New()

	raw := "From: alice@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"First paragraph.\r\n" +
		"\r\n" +
		"\r\n" +
		"\r\n" +
		"Second paragraph.\r\n"

	doc, err := normaliser.Normalise(context.Background(), testMessage(raw))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "First paragraph.\n\nSecond paragraph.")
}
