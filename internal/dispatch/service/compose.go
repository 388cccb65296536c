package service

import (
	"fmt"
	"html"
	"strings"

	domain "github.com/formrelay/relay/internal/dispatch/domain"
	pdomain "github.com/formrelay/relay/internal/pages/domain"
)

// Compose renders the inquiry into a subject and dual-format bodies. It is
// pure: no I/O, no clock, fully determined by its inputs.
func Compose(page pdomain.LandingPage, cfg pdomain.RoutingConfig, form domain.FormData) domain.ComposedMessage {
	return domain.ComposedMessage{
		Subject:  renderSubject(cfg.SubjectTemplate, page.Name),
		TextBody: renderText(page, form),
		HTMLBody: renderHTML(page, form),
	}
}

// renderSubject substitutes the page name into the first occurrence of the
// placeholder. Later occurrences stay literal.
func renderSubject(template, pageName string) string {
	if template == "" {
		template = pdomain.DefaultSubjectTemplate
	}
	return strings.Replace(template, "{{landingPageName}}", pageName, 1)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func renderText(page pdomain.LandingPage, form domain.FormData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New inquiry from %s\n\n", page.Name)
	fmt.Fprintf(&b, "From: %s <%s>\n", orNA(form.Name), orNA(form.Email))
	if form.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", form.Phone)
	}
	if form.Message != "" {
		fmt.Fprintf(&b, "\nMessage:\n%s\n", form.Message)
	}
	fmt.Fprintf(&b, "\n---\nThis email was sent from %s\n", page.Identifier)
	return b.String()
}

// renderHTML escapes every user-supplied value before interpolation. Newlines
// in the message become <br> so multi-line inquiries keep their shape.
func renderHTML(page pdomain.LandingPage, form domain.FormData) string {
	esc := html.EscapeString
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New inquiry from %s</h2>\n", esc(page.Name))
	fmt.Fprintf(&b, "<p><strong>From:</strong> %s &lt;%s&gt;</p>\n", esc(orNA(form.Name)), esc(orNA(form.Email)))
	if form.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>\n", esc(form.Phone))
	}
	if form.Message != "" {
		msg := strings.ReplaceAll(esc(form.Message), "\n", "<br>")
		fmt.Fprintf(&b, "<p><strong>Message:</strong><br>%s</p>\n", msg)
	}
	fmt.Fprintf(&b, "<hr>\n<p><small>This email was sent from %s</small></p>\n", esc(page.Identifier))
	return b.String()
}

// ReplyTo picks the address replies should go to: an explicit config address
// wins, then the inquirer's own address, then the sending identity.
func ReplyTo(cfg pdomain.RoutingConfig, form domain.FormData) string {
	if cfg.ReplyToEmail != "" {
		return cfg.ReplyToEmail
	}
	if form.Email != "" {
		return form.Email
	}
	return cfg.FromEmail
}
