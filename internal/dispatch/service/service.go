package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	adomain "github.com/formrelay/relay/internal/accounts/domain"
	domain "github.com/formrelay/relay/internal/dispatch/domain"
	edomain "github.com/formrelay/relay/internal/events/domain"
	"github.com/formrelay/relay/internal/metrics"
	pdomain "github.com/formrelay/relay/internal/pages/domain"
	"github.com/formrelay/relay/internal/secrets"
)

const (
	stageResolve  = "resolve"
	stageDecrypt  = "decrypt"
	stageTransmit = "transmit"
)

// Placeholder values for failure records where resolution never produced a
// real recipient or subject.
const (
	failedRecipient = "unknown"
	failedSubject   = "Failed to send"
)

type Service struct {
	repo   domain.Repository
	cipher *secrets.Cipher
	tx     domain.Transmitter
	events edomain.Publisher
	log    zerolog.Logger
}

func New(repo domain.Repository, cipher *secrets.Cipher, tx domain.Transmitter, events edomain.Publisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, cipher: cipher, tx: tx, events: events, log: log}
}

var _ domain.Service = (*Service)(nil)

// DispatchInquiry runs the pipeline: resolve, decrypt, compose, transmit,
// record. Each stage's failure aborts the rest except the record write, which
// always happens.
func (s *Service) DispatchInquiry(ctx context.Context, identifier string, form domain.FormData) (domain.Result, error) {
	start := time.Now()

	route, stage, err := s.resolve(ctx, identifier)
	var result domain.Result
	if err == nil {
		result, stage, err = s.deliver(ctx, route, form)
	}

	status := domain.StatusSent
	if err != nil {
		status = domain.StatusFailed
	}
	metrics.IncDispatch(string(status), stage)
	metrics.ObserveDispatchDuration(string(status), time.Since(start).Seconds())

	if err != nil {
		s.recordFailure(ctx, identifier, route, err)
		s.publish(ctx, "dispatch.failed", route, map[string]string{
			"identifier": identifier,
			"stage":      stage,
			"error":      err.Error(),
		})
		return domain.Result{}, err
	}

	s.recordSuccess(ctx, route, form)
	s.publish(ctx, "dispatch.sent", route, map[string]string{
		"identifier": identifier,
		"message_id": result.MessageID,
	})
	return result, nil
}

// resolve walks identifier -> page -> config -> account. Every miss collapses
// into ErrNotConfigured so callers cannot probe which hop exists.
func (s *Service) resolve(ctx context.Context, identifier string) (domain.ResolvedRoute, string, error) {
	var route domain.ResolvedRoute

	page, err := s.repo.FindActiveLandingPageByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, pdomain.ErrNotFound) {
			err = domain.ErrNotConfigured
		}
		return route, stageResolve, err
	}
	route.Page = page

	cfg, err := s.repo.FindRoutingConfigByLandingPage(ctx, page.ID)
	if err != nil {
		if errors.Is(err, pdomain.ErrNotConfigured) {
			err = domain.ErrNotConfigured
		}
		return route, stageResolve, err
	}
	route.Config = cfg

	account, err := s.repo.FindActiveMailAccount(ctx, cfg.MailAccountID)
	if err != nil {
		if errors.Is(err, adomain.ErrNotFound) {
			err = domain.ErrNotConfigured
		}
		return route, stageResolve, err
	}
	route.Account = account

	return route, "", nil
}

func (s *Service) deliver(ctx context.Context, route domain.ResolvedRoute, form domain.FormData) (domain.Result, string, error) {
	password, ok := s.cipher.Decrypt(route.Account.Password)
	if !ok {
		return domain.Result{}, stageDecrypt, domain.NewCredentialError("failed to decrypt mail account password")
	}

	composed := Compose(route.Page, route.Config, form)
	out := domain.OutboundMessage{
		FromName:  route.Config.FromName,
		FromEmail: route.Config.FromEmail,
		To:        route.Config.ToEmail,
		ReplyTo:   ReplyTo(route.Config, form),
		Subject:   composed.Subject,
		TextBody:  composed.TextBody,
		HTMLBody:  composed.HTMLBody,
	}

	id, err := s.tx.Send(ctx, route.Account, password, out)
	if err != nil {
		return domain.Result{}, stageTransmit, domain.NewTransportError(err)
	}
	return domain.Result{MessageID: id}, "", nil
}

// recordSuccess appends the sent record. A failed audit write is logged and
// swallowed; the message is already out.
func (s *Service) recordSuccess(ctx context.Context, route domain.ResolvedRoute, form domain.FormData) {
	now := time.Now()
	pageID := route.Page.ID
	accountID := route.Account.ID
	rec := domain.DispatchRecord{
		ID:            uuid.New(),
		LandingPageID: &pageID,
		MailAccountID: &accountID,
		Recipient:     route.Config.ToEmail,
		Subject:       renderSubject(route.Config.SubjectTemplate, route.Page.Name),
		Status:        domain.StatusSent,
		SentAt:        &now,
	}
	if err := s.repo.InsertDispatchRecord(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("recipient", rec.Recipient).Msg("dispatch record write failed after send")
	}
}

// recordFailure appends the failed record. When resolution got far enough to
// know the real recipient the record keeps it; otherwise placeholders go in.
// A page that failed the active check is looked up again without the flag so
// the record still references it.
func (s *Service) recordFailure(ctx context.Context, identifier string, route domain.ResolvedRoute, cause error) {
	rec := domain.DispatchRecord{
		ID:        uuid.New(),
		Recipient: failedRecipient,
		Subject:   failedSubject,
		Status:    domain.StatusFailed,
	}
	if route.Config.ToEmail != "" {
		rec.Recipient = route.Config.ToEmail
		rec.Subject = renderSubject(route.Config.SubjectTemplate, route.Page.Name)
	}
	if msg := cause.Error(); msg != "" {
		rec.ErrorMessage = msg
	}

	if route.Page.ID != uuid.Nil {
		pageID := route.Page.ID
		rec.LandingPageID = &pageID
	} else if page, err := s.repo.FindLandingPageByIdentifier(ctx, identifier); err == nil {
		pageID := page.ID
		rec.LandingPageID = &pageID
	}
	if route.Account.ID != uuid.Nil {
		accountID := route.Account.ID
		rec.MailAccountID = &accountID
	}

	if err := s.repo.InsertDispatchRecord(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("identifier", identifier).Msg("dispatch record write failed")
	}
}

func (s *Service) publish(ctx context.Context, typ string, route domain.ResolvedRoute, meta map[string]string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, edomain.Event{
		Type:          typ,
		LandingPageID: route.Page.ID,
		MailAccountID: route.Account.ID,
		Meta:          meta,
		Time:          time.Now(),
	})
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int32) ([]domain.DispatchRecord, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListRecords(ctx, limit, offset)
}
