package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("landing page not found")
	ErrNotConfigured = errors.New("landing page has no routing config")
)

// DefaultSubjectTemplate applies when a routing config has no template.
const DefaultSubjectTemplate = "New Inquiry from {{landingPageName}}"

// LandingPage is an external page identified by a public slug.
type LandingPage struct {
	ID         uuid.UUID
	Name       string
	Identifier string // unique public routing key
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoutingConfig maps a landing page to an outbound mail account and message
// template. At most one config exists per landing page.
type RoutingConfig struct {
	ID              uuid.UUID
	LandingPageID   uuid.UUID
	MailAccountID   uuid.UUID
	FromEmail       string
	FromName        string
	ReplyToEmail    string // optional
	ToEmail         string // inquiry recipient
	SubjectTemplate string // optional; DefaultSubjectTemplate when empty
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ConfigParams carries admin input for upserting a routing config.
type ConfigParams struct {
	MailAccountID   uuid.UUID
	FromEmail       string
	FromName        string
	ReplyToEmail    string
	ToEmail         string
	SubjectTemplate string
}

// Repository abstracts persistence for landing pages and their configs.
type Repository interface {
	Create(ctx context.Context, p LandingPage) error
	GetByID(ctx context.Context, id uuid.UUID) (LandingPage, error)
	GetByIdentifier(ctx context.Context, identifier string) (LandingPage, error)
	List(ctx context.Context) ([]LandingPage, error)
	Update(ctx context.Context, p LandingPage) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetConfig(ctx context.Context, landingPageID uuid.UUID) (RoutingConfig, error)
	UpsertConfig(ctx context.Context, cfg RoutingConfig) error
	DeleteConfig(ctx context.Context, landingPageID uuid.UUID) error
}

// Service encapsulates business logic for landing pages.
type Service interface {
	Create(ctx context.Context, name, identifier string) (LandingPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (LandingPage, error)
	List(ctx context.Context) ([]LandingPage, error)
	Update(ctx context.Context, id uuid.UUID, name, identifier string, active bool) (LandingPage, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetConfig(ctx context.Context, landingPageID uuid.UUID) (RoutingConfig, error)
	PutConfig(ctx context.Context, landingPageID uuid.UUID, p ConfigParams) (RoutingConfig, error)
}
