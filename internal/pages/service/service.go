package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	domain "github.com/formrelay/relay/internal/pages/domain"
)

type service struct {
	repo domain.Repository
}

func New(repo domain.Repository) domain.Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, name, identifier string) (domain.LandingPage, error) {
	name = strings.TrimSpace(name)
	identifier = strings.TrimSpace(identifier)
	if name == "" || identifier == "" {
		return domain.LandingPage{}, errors.New("name and identifier are required")
	}
	// Enforce identifier uniqueness up front for a friendlier error than the
	// unique-constraint violation.
	if _, err := s.repo.GetByIdentifier(ctx, identifier); err == nil {
		return domain.LandingPage{}, errors.New("identifier already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.LandingPage{}, err
	}

	p := domain.LandingPage{
		ID:         uuid.New(),
		Name:       name,
		Identifier: identifier,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.LandingPage{}, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (domain.LandingPage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.LandingPage, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, name, identifier string, active bool) (domain.LandingPage, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.LandingPage{}, err
	}
	name = strings.TrimSpace(name)
	identifier = strings.TrimSpace(identifier)
	if name == "" || identifier == "" {
		return domain.LandingPage{}, errors.New("name and identifier are required")
	}
	if identifier != p.Identifier {
		if _, err := s.repo.GetByIdentifier(ctx, identifier); err == nil {
			return domain.LandingPage{}, errors.New("identifier already exists")
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.LandingPage{}, err
		}
	}
	p.Name = name
	p.Identifier = identifier
	p.IsActive = active
	if err := s.repo.Update(ctx, p); err != nil {
		return domain.LandingPage{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GetConfig(ctx context.Context, landingPageID uuid.UUID) (domain.RoutingConfig, error) {
	return s.repo.GetConfig(ctx, landingPageID)
}

func (s *service) PutConfig(ctx context.Context, landingPageID uuid.UUID, p domain.ConfigParams) (domain.RoutingConfig, error) {
	if _, err := s.repo.GetByID(ctx, landingPageID); err != nil {
		return domain.RoutingConfig{}, err
	}
	if p.FromEmail == "" || p.FromName == "" || p.ToEmail == "" {
		return domain.RoutingConfig{}, errors.New("from_email, from_name and to_email are required")
	}
	if p.MailAccountID == uuid.Nil {
		return domain.RoutingConfig{}, errors.New("mail_account_id is required")
	}
	cfg := domain.RoutingConfig{
		ID:              uuid.New(),
		LandingPageID:   landingPageID,
		MailAccountID:   p.MailAccountID,
		FromEmail:       p.FromEmail,
		FromName:        p.FromName,
		ReplyToEmail:    p.ReplyToEmail,
		ToEmail:         p.ToEmail,
		SubjectTemplate: p.SubjectTemplate,
	}
	if err := s.repo.UpsertConfig(ctx, cfg); err != nil {
		return domain.RoutingConfig{}, err
	}
	return s.repo.GetConfig(ctx, landingPageID)
}
