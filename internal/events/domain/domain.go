package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents an operational/audit event.
// Type examples: "dispatch.sent", "dispatch.failed", "account.tested"
// Meta may contain identifier, recipient, stage, etc.
type Event struct {
	Type          string
	LandingPageID uuid.UUID
	MailAccountID uuid.UUID
	Meta          map[string]string
	Time          time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
