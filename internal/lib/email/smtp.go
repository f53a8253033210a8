package email

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/deppfellow/course-referral/internal/config"
)

const defaultSMTPTimeout = 15 * time.Second

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPTransport relays mail through an SMTP account (Gmail by default).
type SMTPTransport struct {
	dialer  smtpDialer
	timeout time.Duration
}

func NewSMTPTransport(cfg *config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		timeout: cfg.Timeout,
	}
}

func (t *SMTPTransport) Name() string {
	return config.ProviderSMTP
}

// Send dials per message. gomail cannot be canceled, so the send runs in
// its own goroutine and Send gives up once ctx ends or the timeout passes.
// An abandoned send finishes or fails on its own.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	timeout := t.timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "smtp send")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "smtp send")
	}
}
