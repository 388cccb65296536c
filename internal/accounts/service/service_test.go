package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/formrelay/relay/internal/accounts/domain"
	"github.com/formrelay/relay/internal/secrets"
)

type fakeRepo struct {
	byID map[uuid.UUID]domain.MailAccount
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]domain.MailAccount{}}
}

func (f *fakeRepo) Create(ctx context.Context, a domain.MailAccount) error {
	f.byID[a.ID] = a
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.MailAccount, error) {
	a, ok := f.byID[id]
	if !ok {
		return domain.MailAccount{}, domain.ErrNotFound
	}
	return a, nil
}
func (f *fakeRepo) List(ctx context.Context) ([]domain.MailAccount, error) {
	out := make([]domain.MailAccount, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}
func (f *fakeRepo) Update(ctx context.Context, a domain.MailAccount) error {
	if _, ok := f.byID[a.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[a.ID] = a
	return nil
}
func (f *fakeRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsActive = active
	f.byID[id] = a
	return nil
}
func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeVerifier struct {
	err         error
	gotPassword string
}

func (f *fakeVerifier) Verify(ctx context.Context, account domain.MailAccount, password string) error {
	f.gotPassword = password
	return f.err
}

func testCipher(t *testing.T) *secrets.Cipher {
	t.Helper()
	c, err := secrets.New("test-secret")
	require.NoError(t, err)
	return c
}

func TestCreate_EncryptsPasswordAndDefaults(t *testing.T) {
	c := testCipher(t)
	repo := newFakeRepo()
	s := New(repo, c, &fakeVerifier{})

	a, err := s.Create(context.Background(), domain.CreateParams{
		Name:     "primary",
		Host:     "smtp.acme.example",
		Username: "noreply@acme.example",
		Password: "secret-password",
	})
	require.NoError(t, err)

	assert.Equal(t, 587, a.Port, "port should default to 587")
	assert.Equal(t, "custom", a.Provider, "provider should default to custom")
	assert.True(t, a.IsActive)

	require.NotEqual(t, "secret-password", a.Password, "password must be stored encrypted")
	plain, ok := c.Decrypt(a.Password)
	require.True(t, ok)
	assert.Equal(t, "secret-password", plain)
}

func TestCreate_RequiredFields(t *testing.T) {
	s := New(newFakeRepo(), testCipher(t), &fakeVerifier{})
	_, err := s.Create(context.Background(), domain.CreateParams{Name: "x"})
	require.Error(t, err)
}

func TestUpdate_EmptyPasswordKeepsStoredCiphertext(t *testing.T) {
	c := testCipher(t)
	repo := newFakeRepo()
	s := New(repo, c, &fakeVerifier{})

	a, err := s.Create(context.Background(), domain.CreateParams{
		Name: "primary", Host: "smtp.acme.example", Username: "u", Password: "original",
	})
	require.NoError(t, err)
	stored := a.Password

	updated, err := s.Update(context.Background(), a.ID, domain.UpdateParams{
		Name: "renamed", Host: a.Host, Username: a.Username, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, stored, updated.Password, "empty password must keep stored ciphertext")
	assert.Equal(t, "renamed", updated.Name)

	updated, err = s.Update(context.Background(), a.ID, domain.UpdateParams{
		Name: "renamed", Host: a.Host, Username: a.Username, Password: "rotated", IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, stored, updated.Password)
	plain, ok := c.Decrypt(updated.Password)
	require.True(t, ok)
	assert.Equal(t, "rotated", plain)
}

func TestTestConnection(t *testing.T) {
	c := testCipher(t)

	newAccount := func(t *testing.T, repo *fakeRepo, s domain.Service) domain.MailAccount {
		t.Helper()
		a, err := s.Create(context.Background(), domain.CreateParams{
			Name: "primary", Host: "smtp.acme.example", Username: "u", Password: "pw",
		})
		require.NoError(t, err)
		return a
	}

	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		v := &fakeVerifier{}
		s := New(repo, c, v)
		a := newAccount(t, repo, s)

		result := s.TestConnection(context.Background(), a.ID)
		assert.True(t, result.Success)
		assert.Equal(t, "SMTP connection successful", result.Message)
		assert.Equal(t, "pw", v.gotPassword, "verifier must receive the decrypted password")
	})

	t.Run("not found", func(t *testing.T) {
		s := New(newFakeRepo(), c, &fakeVerifier{})
		result := s.TestConnection(context.Background(), uuid.New())
		assert.False(t, result.Success)
		assert.Equal(t, "mail account not found", result.Message)
	})

	t.Run("inactive", func(t *testing.T) {
		repo := newFakeRepo()
		s := New(repo, c, &fakeVerifier{})
		a := newAccount(t, repo, s)
		require.NoError(t, s.SetActive(context.Background(), a.ID, false))

		result := s.TestConnection(context.Background(), a.ID)
		assert.False(t, result.Success)
		assert.Equal(t, "mail account is not active", result.Message)
	})

	t.Run("corrupt ciphertext", func(t *testing.T) {
		repo := newFakeRepo()
		s := New(repo, c, &fakeVerifier{})
		a := newAccount(t, repo, s)
		a.Password = "garbage"
		repo.byID[a.ID] = a

		result := s.TestConnection(context.Background(), a.ID)
		assert.False(t, result.Success)
		assert.Equal(t, "failed to decrypt mail account password", result.Message)
	})

	t.Run("verifier failure surfaces message", func(t *testing.T) {
		repo := newFakeRepo()
		s := New(repo, c, &fakeVerifier{err: errors.New("535 authentication failed")})
		a := newAccount(t, repo, s)

		result := s.TestConnection(context.Background(), a.ID)
		assert.False(t, result.Success)
		assert.Equal(t, "535 authentication failed", result.Message)
	})
}
