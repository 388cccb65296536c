package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("allowed origin not found")

// AllowedOrigin is one entry of the public-endpoint CORS allow-list.
// Origin "*" allows every caller.
type AllowedOrigin struct {
	ID          uuid.UUID
	Origin      string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository abstracts persistence for the allow-list.
type Repository interface {
	Create(ctx context.Context, o AllowedOrigin) error
	GetByID(ctx context.Context, id uuid.UUID) (AllowedOrigin, error)
	List(ctx context.Context) ([]AllowedOrigin, error)
	ListActive(ctx context.Context) ([]AllowedOrigin, error)
	Update(ctx context.Context, o AllowedOrigin) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service answers allow/deny for an origin and manages the allow-list.
type Service interface {
	Create(ctx context.Context, origin, description string) (AllowedOrigin, error)
	List(ctx context.Context) ([]AllowedOrigin, error)
	Update(ctx context.Context, id uuid.UUID, origin, description string, active bool) (AllowedOrigin, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// IsAllowed reports whether the given Origin header value may submit
	// inquiries. An empty origin (curl, server-to-server) is allowed.
	IsAllowed(ctx context.Context, origin string) (bool, error)
	// Invalidate drops the cached allow-list snapshot. Admin writes call this.
	Invalidate()
}
