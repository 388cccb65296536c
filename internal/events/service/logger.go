package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/formrelay/relay/internal/events/domain"
)

// Logger is a Publisher that writes events to the process log. A queue or
// external sink can replace it behind the same interface.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(log zerolog.Logger) *Logger { return &Logger{log: log} }

func (l *Logger) Publish(_ context.Context, e domain.Event) error {
	l.log.Info().
		Str("type", e.Type).
		Str("landing_page_id", e.LandingPageID.String()).
		Str("mail_account_id", e.MailAccountID.String()).
		Fields(map[string]any{"meta": e.Meta}).
		Time("ts", e.Time).
		Msg("event")
	return nil
}
