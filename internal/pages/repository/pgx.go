package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/formrelay/relay/internal/pages/domain"
)

type PGXRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGXRepository { return &PGXRepository{pg: pg} }

func toPgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

const pageColumns = `id, name, identifier, is_active, created_at, updated_at`

func scanPage(row pgx.Row) (domain.LandingPage, error) {
	var (
		p         domain.LandingPage
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &p.Name, &p.Identifier, &p.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LandingPage{}, domain.ErrNotFound
		}
		return domain.LandingPage{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func (r *PGXRepository) Create(ctx context.Context, p domain.LandingPage) error {
	_, err := r.pg.Exec(ctx, `
		INSERT INTO landing_pages (id, name, identifier, is_active)
		VALUES ($1, $2, $3, $4)`,
		toPgUUID(p.ID), p.Name, p.Identifier, p.IsActive)
	return err
}

func (r *PGXRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.LandingPage, error) {
	row := r.pg.QueryRow(ctx, `SELECT `+pageColumns+` FROM landing_pages WHERE id = $1`, toPgUUID(id))
	return scanPage(row)
}

func (r *PGXRepository) GetByIdentifier(ctx context.Context, identifier string) (domain.LandingPage, error) {
	row := r.pg.QueryRow(ctx, `SELECT `+pageColumns+` FROM landing_pages WHERE identifier = $1`, identifier)
	return scanPage(row)
}

func (r *PGXRepository) List(ctx context.Context) ([]domain.LandingPage, error) {
	rows, err := r.pg.Query(ctx, `SELECT `+pageColumns+` FROM landing_pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LandingPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGXRepository) Update(ctx context.Context, p domain.LandingPage) error {
	tag, err := r.pg.Exec(ctx, `
		UPDATE landing_pages SET name = $2, identifier = $3, is_active = $4, updated_at = now()
		WHERE id = $1`,
		toPgUUID(p.ID), p.Name, p.Identifier, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGXRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pg.Exec(ctx, `UPDATE landing_pages SET is_active = $2, updated_at = now() WHERE id = $1`, toPgUUID(id), active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGXRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pg.Exec(ctx, `DELETE FROM landing_pages WHERE id = $1`, toPgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const configColumns = `id, landing_page_id, mail_account_id, from_email, from_name, reply_to_email, to_email, subject_template, created_at, updated_at`

func scanConfig(row pgx.Row) (domain.RoutingConfig, error) {
	var (
		cfg       domain.RoutingConfig
		id        pgtype.UUID
		pageID    pgtype.UUID
		accountID pgtype.UUID
		replyTo   pgtype.Text
		subject   pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &pageID, &accountID, &cfg.FromEmail, &cfg.FromName, &replyTo, &cfg.ToEmail, &subject, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoutingConfig{}, domain.ErrNotConfigured
		}
		return domain.RoutingConfig{}, err
	}
	cfg.ID = uuid.UUID(id.Bytes)
	cfg.LandingPageID = uuid.UUID(pageID.Bytes)
	cfg.MailAccountID = uuid.UUID(accountID.Bytes)
	cfg.ReplyToEmail = replyTo.String
	cfg.SubjectTemplate = subject.String
	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time
	return cfg, nil
}

func (r *PGXRepository) GetConfig(ctx context.Context, landingPageID uuid.UUID) (domain.RoutingConfig, error) {
	row := r.pg.QueryRow(ctx, `SELECT `+configColumns+` FROM routing_configs WHERE landing_page_id = $1`, toPgUUID(landingPageID))
	return scanConfig(row)
}

// UpsertConfig relies on the unique constraint on landing_page_id to keep at
// most one routing config per page.
func (r *PGXRepository) UpsertConfig(ctx context.Context, cfg domain.RoutingConfig) error {
	_, err := r.pg.Exec(ctx, `
		INSERT INTO routing_configs (id, landing_page_id, mail_account_id, from_email, from_name, reply_to_email, to_email, subject_template)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''))
		ON CONFLICT (landing_page_id) DO UPDATE
		SET mail_account_id = EXCLUDED.mail_account_id,
		    from_email = EXCLUDED.from_email,
		    from_name = EXCLUDED.from_name,
		    reply_to_email = EXCLUDED.reply_to_email,
		    to_email = EXCLUDED.to_email,
		    subject_template = EXCLUDED.subject_template,
		    updated_at = now()`,
		toPgUUID(cfg.ID), toPgUUID(cfg.LandingPageID), toPgUUID(cfg.MailAccountID),
		cfg.FromEmail, cfg.FromName, cfg.ReplyToEmail, cfg.ToEmail, cfg.SubjectTemplate)
	return err
}

func (r *PGXRepository) DeleteConfig(ctx context.Context, landingPageID uuid.UUID) error {
	_, err := r.pg.Exec(ctx, `DELETE FROM routing_configs WHERE landing_page_id = $1`, toPgUUID(landingPageID))
	return err
}
