package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("mail account not found")

// MailAccount is a set of outbound SMTP credentials owned by a tenant.
// Password always holds ciphertext; only the secrets cipher produces the
// plaintext, transiently, for the duration of a send or connection test.
type MailAccount struct {
	ID        uuid.UUID
	Name      string
	Host      string
	Port      int
	Secure    bool // true for implicit TLS (465), false for STARTTLS (587)
	Username  string
	Password  string // ciphertext
	Provider  string // gmail, sendgrid, ses, custom
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams carries admin input for a new account. Password is plaintext
// here and must be encrypted before it reaches the repository.
type CreateParams struct {
	Name     string
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	Provider string
}

// UpdateParams mirrors CreateParams; an empty Password keeps the stored one.
type UpdateParams struct {
	Name     string
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	Provider string
	IsActive bool
}

// TestResult reports a connection test outcome. Expected failures (bad auth,
// unreachable host) land here as Success=false, never as an error.
type TestResult struct {
	Success bool
	Message string
}

// Repository abstracts persistence for mail accounts.
type Repository interface {
	Create(ctx context.Context, a MailAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (MailAccount, error)
	List(ctx context.Context) ([]MailAccount, error)
	Update(ctx context.Context, a MailAccount) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConnectionVerifier performs a connect/auth handshake with no message send.
// Satisfied by the dispatch transmitter.
type ConnectionVerifier interface {
	Verify(ctx context.Context, account MailAccount, password string) error
}

// Service encapsulates business logic for mail accounts.
type Service interface {
	Create(ctx context.Context, p CreateParams) (MailAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (MailAccount, error)
	List(ctx context.Context) ([]MailAccount, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (MailAccount, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	TestConnection(ctx context.Context, id uuid.UUID) TestResult
}
