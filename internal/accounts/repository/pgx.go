package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/formrelay/relay/internal/accounts/domain"
)

type PGXRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGXRepository { return &PGXRepository{pg: pg} }

func toPgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

const accountColumns = `id, name, host, port, secure, username, password, provider, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (domain.MailAccount, error) {
	var (
		a         domain.MailAccount
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &a.Name, &a.Host, &a.Port, &a.Secure, &a.Username, &a.Password, &a.Provider, &a.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MailAccount{}, domain.ErrNotFound
		}
		return domain.MailAccount{}, err
	}
	a.ID = uuid.UUID(id.Bytes)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return a, nil
}

func (r *PGXRepository) Create(ctx context.Context, a domain.MailAccount) error {
	_, err := r.pg.Exec(ctx, `
		INSERT INTO mail_accounts (id, name, host, port, secure, username, password, provider, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		toPgUUID(a.ID), a.Name, a.Host, a.Port, a.Secure, a.Username, a.Password, a.Provider, a.IsActive)
	return err
}

func (r *PGXRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.MailAccount, error) {
	row := r.pg.QueryRow(ctx, `SELECT `+accountColumns+` FROM mail_accounts WHERE id = $1`, toPgUUID(id))
	return scanAccount(row)
}

func (r *PGXRepository) List(ctx context.Context) ([]domain.MailAccount, error) {
	rows, err := r.pg.Query(ctx, `SELECT `+accountColumns+` FROM mail_accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MailAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGXRepository) Update(ctx context.Context, a domain.MailAccount) error {
	tag, err := r.pg.Exec(ctx, `
		UPDATE mail_accounts
		SET name = $2, host = $3, port = $4, secure = $5, username = $6, password = $7, provider = $8, is_active = $9, updated_at = now()
		WHERE id = $1`,
		toPgUUID(a.ID), a.Name, a.Host, a.Port, a.Secure, a.Username, a.Password, a.Provider, a.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGXRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pg.Exec(ctx, `UPDATE mail_accounts SET is_active = $2, updated_at = now() WHERE id = $1`, toPgUUID(id), active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGXRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM mail_accounts WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
