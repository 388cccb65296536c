package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/formrelay/relay/internal/logger"
	domain "github.com/formrelay/relay/internal/origins/domain"
)

type fakeRepo struct {
	active      []domain.AllowedOrigin
	err         error
	activeCalls int
}

func (f *fakeRepo) Create(ctx context.Context, o domain.AllowedOrigin) error { return nil }
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.AllowedOrigin, error) {
	return domain.AllowedOrigin{ID: id}, nil
}
func (f *fakeRepo) List(ctx context.Context) ([]domain.AllowedOrigin, error) { return f.active, f.err }
func (f *fakeRepo) ListActive(ctx context.Context) ([]domain.AllowedOrigin, error) {
	f.activeCalls++
	return f.active, f.err
}
func (f *fakeRepo) Update(ctx context.Context, o domain.AllowedOrigin) error { return nil }
func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }

func allowed(t *testing.T, s domain.Service, origin string) bool {
	t.Helper()
	ok, err := s.IsAllowed(context.Background(), origin)
	if err != nil {
		t.Fatalf("IsAllowed(%q): %v", origin, err)
	}
	return ok
}

func TestIsAllowed_ExactMatch(t *testing.T) {
	repo := &fakeRepo{active: []domain.AllowedOrigin{
		{Origin: "https://landing.example.com", IsActive: true},
	}}
	s := New(repo, logger.Nop(), time.Minute, true)

	if !allowed(t, s, "https://landing.example.com") {
		t.Fatal("expected exact origin to be allowed")
	}
	if !allowed(t, s, "https://landing.example.com/") {
		t.Fatal("expected trailing slash to normalize away")
	}
	if allowed(t, s, "https://evil.example.com") {
		t.Fatal("did not expect unlisted origin to be allowed")
	}
}

func TestIsAllowed_EmptyListAllowsAll(t *testing.T) {
	s := New(&fakeRepo{}, logger.Nop(), time.Minute, true)
	if !allowed(t, s, "https://anything.example.com") {
		t.Fatal("expected empty allow-list to allow all origins")
	}
}

func TestIsAllowed_WildcardRow(t *testing.T) {
	repo := &fakeRepo{active: []domain.AllowedOrigin{{Origin: "*", IsActive: true}}}
	s := New(repo, logger.Nop(), time.Minute, true)
	if !allowed(t, s, "https://anything.example.com") {
		t.Fatal("expected wildcard row to allow all origins")
	}
}

func TestIsAllowed_NoOriginHeaderAllowed(t *testing.T) {
	repo := &fakeRepo{active: []domain.AllowedOrigin{
		{Origin: "https://landing.example.com", IsActive: true},
	}}
	s := New(repo, logger.Nop(), time.Minute, true)
	if !allowed(t, s, "") {
		t.Fatal("expected requests without an Origin header to be allowed")
	}
}

func TestIsAllowed_FailOpenPolicy(t *testing.T) {
	repo := &fakeRepo{err: errors.New("store down")}

	open := New(repo, logger.Nop(), time.Minute, true)
	if !allowed(t, open, "https://anything.example.com") {
		t.Fatal("fail-open service should allow on store error")
	}

	closed := New(repo, logger.Nop(), time.Minute, false)
	ok, err := closed.IsAllowed(context.Background(), "https://anything.example.com")
	if err == nil {
		t.Fatal("fail-closed service should surface the store error")
	}
	if ok {
		t.Fatal("fail-closed service should deny on store error")
	}
}

func TestCache_SingleEntryWithTTL(t *testing.T) {
	repo := &fakeRepo{active: []domain.AllowedOrigin{
		{Origin: "https://landing.example.com", IsActive: true},
	}}
	s := New(repo, logger.Nop(), time.Hour, true)

	allowed(t, s, "https://landing.example.com")
	allowed(t, s, "https://landing.example.com")
	allowed(t, s, "https://other.example.com")
	if repo.activeCalls != 1 {
		t.Fatalf("expected one store read within TTL, got %d", repo.activeCalls)
	}
}

func TestCache_InvalidateForcesReload(t *testing.T) {
	repo := &fakeRepo{active: []domain.AllowedOrigin{
		{Origin: "https://landing.example.com", IsActive: true},
	}}
	s := New(repo, logger.Nop(), time.Hour, true)

	allowed(t, s, "https://landing.example.com")
	s.Invalidate()

	repo.active = append(repo.active, domain.AllowedOrigin{Origin: "https://new.example.com", IsActive: true})
	if !allowed(t, s, "https://new.example.com") {
		t.Fatal("expected invalidation to pick up the new origin")
	}
	if repo.activeCalls != 2 {
		t.Fatalf("expected reload after Invalidate, got %d reads", repo.activeCalls)
	}
}

func TestNormalizeOrigin(t *testing.T) {
	cases := map[string]string{
		"https://a.example.com":  "https://a.example.com",
		"https://a.example.com/": "https://a.example.com",
		"  https://a.example.com  ": "https://a.example.com",
		"a.example.com": "https://a.example.com",
		"*":             "*",
		"":              "",
	}
	for in, want := range cases {
		if got := normalizeOrigin(in); got != want {
			t.Errorf("normalizeOrigin(%q) = %q, want %q", in, got, want)
		}
	}
}
