package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domain "github.com/formrelay/relay/internal/accounts/domain"
	"github.com/formrelay/relay/internal/metrics"
	"github.com/formrelay/relay/internal/secrets"
)

type service struct {
	repo     domain.Repository
	cipher   *secrets.Cipher
	verifier domain.ConnectionVerifier
}

func New(repo domain.Repository, cipher *secrets.Cipher, verifier domain.ConnectionVerifier) domain.Service {
	return &service{repo: repo, cipher: cipher, verifier: verifier}
}

func (s *service) Create(ctx context.Context, p domain.CreateParams) (domain.MailAccount, error) {
	if p.Name == "" || p.Host == "" || p.Username == "" || p.Password == "" {
		return domain.MailAccount{}, errors.New("name, host, username and password are required")
	}
	if p.Port <= 0 || p.Port > 65535 {
		p.Port = 587
	}
	if p.Provider == "" {
		p.Provider = "custom"
	}

	encrypted, err := s.cipher.Encrypt(p.Password)
	if err != nil {
		return domain.MailAccount{}, err
	}

	a := domain.MailAccount{
		ID:       uuid.New(),
		Name:     p.Name,
		Host:     p.Host,
		Port:     p.Port,
		Secure:   p.Secure,
		Username: p.Username,
		Password: encrypted,
		Provider: p.Provider,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return domain.MailAccount{}, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (domain.MailAccount, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.MailAccount, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, p domain.UpdateParams) (domain.MailAccount, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.MailAccount{}, err
	}

	a.Name = p.Name
	a.Host = p.Host
	if p.Port > 0 && p.Port <= 65535 {
		a.Port = p.Port
	}
	a.Secure = p.Secure
	a.Username = p.Username
	a.IsActive = p.IsActive
	if p.Provider != "" {
		a.Provider = p.Provider
	}
	// Empty password means "keep the stored ciphertext".
	if p.Password != "" {
		encrypted, err := s.cipher.Encrypt(p.Password)
		if err != nil {
			return domain.MailAccount{}, err
		}
		a.Password = encrypted
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return domain.MailAccount{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// TestConnection resolves the account, decrypts its password and performs an
// auth handshake without sending. Expected failures come back as a message,
// never as an error.
func (s *service) TestConnection(ctx context.Context, id uuid.UUID) domain.TestResult {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		metrics.IncVerify("failure")
		return domain.TestResult{Success: false, Message: "mail account not found"}
	}
	if !a.IsActive {
		metrics.IncVerify("failure")
		return domain.TestResult{Success: false, Message: "mail account is not active"}
	}

	password, ok := s.cipher.Decrypt(a.Password)
	if !ok {
		metrics.IncVerify("failure")
		return domain.TestResult{Success: false, Message: "failed to decrypt mail account password"}
	}

	if err := s.verifier.Verify(ctx, a, password); err != nil {
		metrics.IncVerify("failure")
		return domain.TestResult{Success: false, Message: err.Error()}
	}
	metrics.IncVerify("success")
	return domain.TestResult{Success: true, Message: "SMTP connection successful"}
}
