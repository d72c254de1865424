package dispatch

import (
	"context"

	"go.uber.org/zap"
)

// Email is a fully built outbound message. Building and sending are separate
// steps so that a dispatch failure is distinguishable from a persistence
// failure upstream.
type Email struct {
	To       string
	Cc       []string
	Subject  string
	HTMLBody string
}

// Mailer sends a built email. Implementations must not retry internally;
// the caller records a single failure per entity and moves on.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer records outbound email with the logger instead of sending it.
// Used in environments without SES credentials.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email dispatch (log driver)",
		zap.String("to", email.To),
		zap.Strings("cc", email.Cc),
		zap.String("subject", email.Subject),
	)
	return nil
}
