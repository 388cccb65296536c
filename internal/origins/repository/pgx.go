package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/formrelay/relay/internal/origins/domain"
)

type PGXRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGXRepository { return &PGXRepository{pg: pg} }

func toPgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

const originColumns = `id, origin, description, is_active, created_at, updated_at`

func scanOrigin(row pgx.Row) (domain.AllowedOrigin, error) {
	var (
		o         domain.AllowedOrigin
		id        pgtype.UUID
		desc      pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &o.Origin, &desc, &o.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AllowedOrigin{}, domain.ErrNotFound
		}
		return domain.AllowedOrigin{}, err
	}
	o.ID = uuid.UUID(id.Bytes)
	o.Description = desc.String
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return o, nil
}

func (r *PGXRepository) Create(ctx context.Context, o domain.AllowedOrigin) error {
	_, err := r.pg.Exec(ctx, `
		INSERT INTO allowed_origins (id, origin, description, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4)`,
		toPgUUID(o.ID), o.Origin, o.Description, o.IsActive)
	return err
}

func (r *PGXRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.AllowedOrigin, error) {
	row := r.pg.QueryRow(ctx, `SELECT `+originColumns+` FROM allowed_origins WHERE id = $1`, toPgUUID(id))
	return scanOrigin(row)
}

func (r *PGXRepository) List(ctx context.Context) ([]domain.AllowedOrigin, error) {
	return r.query(ctx, `SELECT `+originColumns+` FROM allowed_origins ORDER BY created_at DESC`)
}

func (r *PGXRepository) ListActive(ctx context.Context) ([]domain.AllowedOrigin, error) {
	return r.query(ctx, `SELECT `+originColumns+` FROM allowed_origins WHERE is_active ORDER BY created_at DESC`)
}

func (r *PGXRepository) query(ctx context.Context, sql string) ([]domain.AllowedOrigin, error) {
	rows, err := r.pg.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AllowedOrigin
	for rows.Next() {
		o, err := scanOrigin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGXRepository) Update(ctx context.Context, o domain.AllowedOrigin) error {
	tag, err := r.pg.Exec(ctx, `
		UPDATE allowed_origins SET origin = $2, description = NULLIF($3, ''), is_active = $4, updated_at = now()
		WHERE id = $1`,
		toPgUUID(o.ID), o.Origin, o.Description, o.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGXRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM allowed_origins WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
