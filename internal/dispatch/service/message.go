package service

import (
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/formrelay/relay/internal/dispatch/domain"
)

// sanitizeHeader strips CR and LF so user-influenced values can never smuggle
// extra headers into the message.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

// formatAddress renders `"Name" <email>`, or the bare address when no
// display name is set.
func formatAddress(name, email string) string {
	name = sanitizeHeader(name)
	email = sanitizeHeader(email)
	if name == "" {
		return email
	}
	return fmt.Sprintf("%q <%s>", name, email)
}

// messageID derives an RFC 5322 Message-ID from the sender's domain.
func messageID(fromEmail string) string {
	dom := "localhost"
	if i := strings.LastIndex(fromEmail, "@"); i >= 0 && i < len(fromEmail)-1 {
		dom = fromEmail[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), dom)
}

// buildMIME assembles a multipart/alternative message with a plain text part
// first and the HTML part last, so capable clients prefer HTML. Returns the
// raw message and its Message-ID.
func buildMIME(msg domain.OutboundMessage, now time.Time) (string, string) {
	boundary := "=_relay_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	id := messageID(msg.FromEmail)

	var b strings.Builder
	write := func(format string, args ...any) { fmt.Fprintf(&b, format+"\r\n", args...) }

	write("From: %s", formatAddress(msg.FromName, msg.FromEmail))
	write("To: %s", sanitizeHeader(msg.To))
	if msg.ReplyTo != "" {
		write("Reply-To: %s", sanitizeHeader(msg.ReplyTo))
	}
	write("Subject: %s", mime.QEncoding.Encode("utf-8", sanitizeHeader(msg.Subject)))
	write("Date: %s", now.UTC().Format(time.RFC1123Z))
	write("Message-ID: %s", id)
	write("MIME-Version: 1.0")
	write("Content-Type: multipart/alternative; boundary=%q", boundary)
	write("")

	writePart := func(contentType, body string) {
		write("--%s", boundary)
		write("Content-Type: %s; charset=utf-8", contentType)
		write("Content-Transfer-Encoding: quoted-printable")
		write("")
		qp := quotedprintable.NewWriter(&b)
		_, _ = qp.Write([]byte(body))
		_ = qp.Close()
		write("")
	}
	writePart("text/plain", msg.TextBody)
	writePart("text/html", msg.HTMLBody)
	write("--%s--", boundary)

	return b.String(), id
}
