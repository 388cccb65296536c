package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/formrelay/relay/internal/origins/domain"
)

// snapshot is one cached read of the active allow-list. The cache holds at
// most one entry and is invalidated by TTL or by an admin write.
type snapshot struct {
	wildcard bool
	origins  map[string]struct{}
	loadedAt time.Time
}

type service struct {
	repo domain.Repository
	log  zerolog.Logger
	ttl  time.Duration
	// failOpen allows submissions when the allow-list read itself errors.
	// Configurable so a closed posture is one env var away.
	failOpen bool

	mu     sync.Mutex
	cached *snapshot
}

func New(repo domain.Repository, log zerolog.Logger, ttl time.Duration, failOpen bool) domain.Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &service{repo: repo, log: log, ttl: ttl, failOpen: failOpen}
}

func (s *service) Create(ctx context.Context, origin, description string) (domain.AllowedOrigin, error) {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return domain.AllowedOrigin{}, errors.New("origin is required")
	}
	o := domain.AllowedOrigin{
		ID:          uuid.New(),
		Origin:      origin,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return domain.AllowedOrigin{}, err
	}
	s.Invalidate()
	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) List(ctx context.Context) ([]domain.AllowedOrigin, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, origin, description string, active bool) (domain.AllowedOrigin, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.AllowedOrigin{}, err
	}
	origin = normalizeOrigin(origin)
	if origin == "" {
		return domain.AllowedOrigin{}, errors.New("origin is required")
	}
	o.Origin = origin
	o.Description = strings.TrimSpace(description)
	o.IsActive = active
	if err := s.repo.Update(ctx, o); err != nil {
		return domain.AllowedOrigin{}, err
	}
	s.Invalidate()
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *service) IsAllowed(ctx context.Context, origin string) (bool, error) {
	snap, err := s.load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("allow-list lookup failed")
		if s.failOpen {
			return true, nil
		}
		return false, err
	}
	if snap.wildcard {
		return true, nil
	}
	// No Origin header: direct API calls and server-to-server traffic.
	if origin == "" || origin == "*" {
		return true, nil
	}
	_, ok := snap.origins[normalizeOrigin(origin)]
	return ok, nil
}

func (s *service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *service) load(ctx context.Context) (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.cached.loadedAt) < s.ttl {
		return s.cached, nil
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{origins: make(map[string]struct{}, len(active)), loadedAt: time.Now()}
	// An empty allow-list allows everyone; so does an explicit "*" row.
	if len(active) == 0 {
		snap.wildcard = true
	}
	for _, o := range active {
		if o.Origin == "*" {
			snap.wildcard = true
			continue
		}
		snap.origins[normalizeOrigin(o.Origin)] = struct{}{}
	}
	s.cached = snap
	return snap, nil
}

// normalizeOrigin trims whitespace and trailing slashes and defaults bare
// domains to https so stored values compare equal to browser Origin headers.
func normalizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	origin = strings.TrimSuffix(origin, "/")
	if origin == "" || origin == "*" {
		return origin
	}
	if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
		origin = "https://" + origin
	}
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return origin
}
