package notification

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("notification: recipient is required")

const (
	// KindOTP marks a one-time passcode email.
	KindOTP = "otp"
	// KindAdminNotice marks a new-application notice for the admissions office.
	KindAdminNotice = "admin_notice"
)

// Message describes an outbound email.
type Message struct {
	Kind    string
	To      string
	Subject string
	// HTMLBody is sent as text/html.
	HTMLBody string
}

// Notifier delivers messages to recipients. Implementations may block on I/O.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes messages to the structured logger instead of delivering them.
// It backs MAIL_DRY_RUN deployments.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message metadata to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if message.To == "" {
		return ErrNoRecipient
	}
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification (dry run)",
		slog.String("kind", message.Kind),
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.Int("body_bytes", len(message.HTMLBody)),
	)
	n.logger.Debug("notification body (dry run)", slog.String("to", message.To), slog.String("body", message.HTMLBody))
	return nil
}
