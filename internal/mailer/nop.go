package mailer

import (
	"context"

	"go.uber.org/zap"
)

// NopMailer logs instead of delivering. Wired in when SMTP is disabled so the
// full send pipeline stays exercisable in development.
type NopMailer struct {
	log *zap.Logger
}

func NewNop(log *zap.Logger) *NopMailer {
	return &NopMailer{log: log.Named("mailer.nop")}
}

func (m *NopMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("mail suppressed, smtp disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachment_bytes", len(msg.Attachment)),
	)
	return nil
}
