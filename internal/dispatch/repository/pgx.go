package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	adomain "github.com/formrelay/relay/internal/accounts/domain"
	domain "github.com/formrelay/relay/internal/dispatch/domain"
	pdomain "github.com/formrelay/relay/internal/pages/domain"
)

type PGXRepository struct{ pg *pgxpool.Pool }

func New(pg *pgxpool.Pool) *PGXRepository { return &PGXRepository{pg: pg} }

func toPgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

func toPgUUIDPtr(u *uuid.UUID) pgtype.UUID {
	if u == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *u, Valid: true}
}

func scanPage(row pgx.Row) (pdomain.LandingPage, error) {
	var (
		p         pdomain.LandingPage
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &p.Name, &p.Identifier, &p.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pdomain.LandingPage{}, pdomain.ErrNotFound
		}
		return pdomain.LandingPage{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func (r *PGXRepository) FindActiveLandingPageByIdentifier(ctx context.Context, identifier string) (pdomain.LandingPage, error) {
	row := r.pg.QueryRow(ctx, `
		SELECT id, name, identifier, is_active, created_at, updated_at
		FROM landing_pages WHERE identifier = $1 AND is_active = true`, identifier)
	return scanPage(row)
}

func (r *PGXRepository) FindLandingPageByIdentifier(ctx context.Context, identifier string) (pdomain.LandingPage, error) {
	row := r.pg.QueryRow(ctx, `
		SELECT id, name, identifier, is_active, created_at, updated_at
		FROM landing_pages WHERE identifier = $1`, identifier)
	return scanPage(row)
}

func (r *PGXRepository) FindRoutingConfigByLandingPage(ctx context.Context, landingPageID uuid.UUID) (pdomain.RoutingConfig, error) {
	var (
		cfg       pdomain.RoutingConfig
		id        pgtype.UUID
		pageID    pgtype.UUID
		accountID pgtype.UUID
		replyTo   pgtype.Text
		subject   pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.pg.QueryRow(ctx, `
		SELECT id, landing_page_id, mail_account_id, from_email, from_name, reply_to_email, to_email, subject_template, created_at, updated_at
		FROM routing_configs WHERE landing_page_id = $1`, toPgUUID(landingPageID)).
		Scan(&id, &pageID, &accountID, &cfg.FromEmail, &cfg.FromName, &replyTo, &cfg.ToEmail, &subject, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pdomain.RoutingConfig{}, pdomain.ErrNotConfigured
		}
		return pdomain.RoutingConfig{}, err
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

func (r *PGXRepository) FindActiveMailAccount(ctx context.Context, id uuid.UUID) (adomain.MailAccount, error) {
	var (
		a         adomain.MailAccount
		aid       pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.pg.QueryRow(ctx, `
		SELECT id, name, host, port, secure, username, password, provider, is_active, created_at, updated_at
		FROM mail_accounts WHERE id = $1 AND is_active = true`, toPgUUID(id)).
		Scan(&aid, &a.Name, &a.Host, &a.Port, &a.Secure, &a.Username, &a.Password, &a.Provider, &a.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return adomain.MailAccount{}, adomain.ErrNotFound
		}
		return adomain.MailAccount{}, err
	}
	a.ID = uuid.UUID(aid.Bytes)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return a, nil
}

func (r *PGXRepository) InsertDispatchRecord(ctx context.Context, rec domain.DispatchRecord) error {
	var sentAt pgtype.Timestamptz
	if rec.SentAt != nil {
		sentAt = pgtype.Timestamptz{Time: *rec.SentAt, Valid: true}
	}
	_, err := r.pg.Exec(ctx, `
		INSERT INTO dispatch_records (id, landing_page_id, mail_account_id, recipient, subject, status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
		toPgUUID(rec.ID), toPgUUIDPtr(rec.LandingPageID), toPgUUIDPtr(rec.MailAccountID),
		rec.Recipient, rec.Subject, string(rec.Status), rec.ErrorMessage, sentAt)
	return err
}

func (r *PGXRepository) ListRecords(ctx context.Context, limit, offset int32) ([]domain.DispatchRecord, int64, error) {
	var total int64
	if err := r.pg.QueryRow(ctx, `SELECT count(*) FROM dispatch_records`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pg.Query(ctx, `
		SELECT id, landing_page_id, mail_account_id, recipient, subject, status, error_message, sent_at, created_at
		FROM dispatch_records ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.DispatchRecord
	for rows.Next() {
		var (
			rec       domain.DispatchRecord
			id        pgtype.UUID
			pageID    pgtype.UUID
			accountID pgtype.UUID
			status    string
			errMsg    pgtype.Text
			sentAt    pgtype.Timestamptz
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &pageID, &accountID, &rec.Recipient, &rec.Subject, &status, &errMsg, &sentAt, &createdAt); err != nil {
			return nil, 0, err
		}
		rec.ID = uuid.UUID(id.Bytes)
		if pageID.Valid {
			u := uuid.UUID(pageID.Bytes)
			rec.LandingPageID = &u
		}
		if accountID.Valid {
			u := uuid.UUID(accountID.Bytes)
			rec.MailAccountID = &u
		}
		rec.Status = domain.Status(status)
		rec.ErrorMessage = errMsg.String
		if sentAt.Valid {
			t := sentAt.Time
			rec.SentAt = &t
		}
		rec.CreatedAt = createdAt.Time
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
