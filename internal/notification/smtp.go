package notification

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrSMTPNotConfigured is returned when host, port or credentials are missing.
var ErrSMTPNotConfigured = errors.New("notification: smtp host, port, user and password are required")

// SMTPConfig configures the SMTP notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// Secure selects implicit TLS (typically port 465) instead of STARTTLS.
	Secure bool
	From   string
}

// SMTPNotifier delivers messages through an SMTP relay.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier builds a notifier; it fails fast when required settings are absent.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Port <= 0 || cfg.User == "" || cfg.Password == "" {
		return nil, ErrSMTPNotConfigured
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.SSL = cfg.Secure

	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPNotifier{dialer: dialer, from: from}, nil
}

// Send composes an HTML email and hands it to the relay.
func (n *SMTPNotifier) Send(ctx context.Context, message Message) error {
	if message.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", message.To)
	m.SetHeader("Subject", message.Subject)
	m.SetBody("text/html", message.HTMLBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email: %w", message.Kind, err)
	}
	return nil
}

// Ping dials the relay and authenticates without sending anything.
func (n *SMTPNotifier) Ping() error {
	closer, err := n.dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	return closer.Close()
}
