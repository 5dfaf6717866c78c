package mail

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// LogMailer writes outbound messages to the structured log instead of
// delivering them. Used when no SMTP endpoint is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mail")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "outbound mail suppressed", "to", msg.To, "subject", msg.Subject)
	return nil
}
