package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/formrelay/relay/internal/dispatch/domain"
	pdomain "github.com/formrelay/relay/internal/pages/domain"
)

func page(name, identifier string) pdomain.LandingPage {
	return pdomain.LandingPage{Name: name, Identifier: identifier, IsActive: true}
}

func TestRenderSubject(t *testing.T) {
	cases := []struct {
		name     string
		template string
		pageName string
		want     string
	}{
		{"default template", "", "Acme Landing", "New Inquiry from Acme Landing"},
		{"custom template", "[web] {{landingPageName}}", "Acme Landing", "[web] Acme Landing"},
		{"no placeholder", "Fixed subject", "Acme Landing", "Fixed subject"},
		{"first occurrence only", "{{landingPageName}} / {{landingPageName}}", "A", "A / {{landingPageName}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderSubject(tc.template, tc.pageName))
		})
	}
}

func TestCompose_TextBody(t *testing.T) {
	msg := Compose(page("Acme", "acme-landing"), pdomain.RoutingConfig{}, domain.FormData{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "+1 555 0100",
		Message: "Hello there",
	})

	assert.Contains(t, msg.TextBody, "New inquiry from Acme")
	assert.Contains(t, msg.TextBody, "From: Jane Doe <jane@example.com>")
	assert.Contains(t, msg.TextBody, "Phone: +1 555 0100")
	assert.Contains(t, msg.TextBody, "Hello there")
	assert.Contains(t, msg.TextBody, "This email was sent from acme-landing")
	assert.Contains(t, msg.HTMLBody, "<p><strong>From:</strong> Jane Doe &lt;jane@example.com&gt;</p>")
}

func TestCompose_MissingFieldsFallBackToNA(t *testing.T) {
	msg := Compose(page("Acme", "acme-landing"), pdomain.RoutingConfig{}, domain.FormData{})

	assert.Contains(t, msg.TextBody, "From: N/A <N/A>")
	assert.NotContains(t, msg.TextBody, "Phone:")
	assert.NotContains(t, msg.TextBody, "Message:")
	assert.Contains(t, msg.HTMLBody, "N/A &lt;N/A&gt;")
}

func TestCompose_HTMLEscapesUserInput(t *testing.T) {
	msg := Compose(page("Acme", "acme-landing"), pdomain.RoutingConfig{}, domain.FormData{
		Name:    `<script>alert("x")</script>`,
		Message: "line one\nline two",
	})

	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Fatal("user input leaked into HTML unescaped")
	}
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
	assert.Contains(t, msg.HTMLBody, "line one<br>line two")
	// The text part stays verbatim.
	assert.Contains(t, msg.TextBody, `<script>alert("x")</script>`)
	assert.Contains(t, msg.TextBody, "line one\nline two")
}

func TestReplyToChain(t *testing.T) {
	cfg := pdomain.RoutingConfig{FromEmail: "noreply@acme.example"}

	cfg.ReplyToEmail = "sales@acme.example"
	assert.Equal(t, "sales@acme.example", ReplyTo(cfg, domain.FormData{Email: "jane@example.com"}))

	cfg.ReplyToEmail = ""
	assert.Equal(t, "jane@example.com", ReplyTo(cfg, domain.FormData{Email: "jane@example.com"}))

	assert.Equal(t, "noreply@acme.example", ReplyTo(cfg, domain.FormData{}))
}
