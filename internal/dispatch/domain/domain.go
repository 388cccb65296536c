// Package domain defines the inquiry dispatch pipeline's types: resolved
// routes, composed messages, the append-only dispatch audit record and the
// error taxonomy the orchestrator maps stages onto.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	adomain "github.com/formrelay/relay/internal/accounts/domain"
	pdomain "github.com/formrelay/relay/internal/pages/domain"
)

// FormData is a submitted inquiry. Every field is optional; the composer
// substitutes "N/A" where sender identity is missing.
type FormData struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// ResolvedRoute bundles the three records a dispatch needs, all verified
// active at resolution time. The account password is still ciphertext here.
type ResolvedRoute struct {
	Page    pdomain.LandingPage
	Config  pdomain.RoutingConfig
	Account adomain.MailAccount
}

// ComposedMessage is the output of the composer: subject plus dual-format bodies.
type ComposedMessage struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// OutboundMessage is what the transmitter puts on the wire.
type OutboundMessage struct {
	FromName  string
	FromEmail string
	To        string
	ReplyTo   string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// DispatchRecord is the audit log row written exactly once per dispatch
// attempt. Records are append-only; nothing mutates them after insert.
type DispatchRecord struct {
	ID            uuid.UUID
	LandingPageID *uuid.UUID
	MailAccountID *uuid.UUID
	Recipient     string
	Subject       string
	Status        Status
	ErrorMessage  string
	SentAt        *time.Time
	CreatedAt     time.Time
}

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Result is returned to the public endpoint on success.
type Result struct {
	MessageID string
}

// Repository is the dispatch pipeline's view of the config store. The core
// only reads routing state and appends dispatch records.
type Repository interface {
	FindActiveLandingPageByIdentifier(ctx context.Context, identifier string) (pdomain.LandingPage, error)
	// FindLandingPageByIdentifier ignores the active flag; the failure path
	// uses it so even a deactivated page's record keeps its reference.
	FindLandingPageByIdentifier(ctx context.Context, identifier string) (pdomain.LandingPage, error)
	FindRoutingConfigByLandingPage(ctx context.Context, landingPageID uuid.UUID) (pdomain.RoutingConfig, error)
	FindActiveMailAccount(ctx context.Context, id uuid.UUID) (adomain.MailAccount, error)
	InsertDispatchRecord(ctx context.Context, rec DispatchRecord) error
	ListRecords(ctx context.Context, limit, offset int32) ([]DispatchRecord, int64, error)
}

// Transmitter opens authenticated SMTP sessions. One attempt per call, no
// retries; timeouts surface as transport errors like any other failure.
type Transmitter interface {
	Verify(ctx context.Context, account adomain.MailAccount, password string) error
	Send(ctx context.Context, account adomain.MailAccount, password string, msg OutboundMessage) (string, error)
}

// Service runs the dispatch pipeline.
type Service interface {
	// DispatchInquiry resolves the landing page identifier, composes and
	// transmits the inquiry, and records the outcome. Exactly one
	// DispatchRecord is written per invocation, success or failure.
	DispatchInquiry(ctx context.Context, identifier string, form FormData) (Result, error)
	ListRecords(ctx context.Context, limit, offset int32) ([]DispatchRecord, int64, error)
}
