// Package email renders notification emails and hands them to the
// configured provider: an SMTP relay, Resend or AWS SES.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/config"
)

// Client renders templates and delivers them through a Transport.
// It is safe for concurrent use.
type Client struct {
	transport Transport
	from      string
	fromName  string
	logger    *zerolog.Logger
}

// NewClient builds the transport selected by cfg.Provider.
func NewClient(ctx context.Context, cfg *config.EmailConfig, logger *zerolog.Logger) (*Client, error) {
	var transport Transport

	switch cfg.Provider {
	case config.ProviderSMTP:
		transport = NewSMTPTransport(&cfg.SMTP)
	case config.ProviderResend:
		transport = NewResendTransport(&cfg.Resend)
	case config.ProviderSES:
		ses, err := NewSESTransport(ctx, &cfg.SES)
		if err != nil {
			return nil, err
		}
		transport = ses
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}

	return NewClientWithTransport(transport, cfg.Sender(), cfg.FromName, logger), nil
}

// NewClientWithTransport wires an explicit transport.
func NewClientWithTransport(transport Transport, from, fromName string, logger *zerolog.Logger) *Client {
	return &Client{
		transport: transport,
		from:      from,
		fromName:  fromName,
		logger:    logger,
	}
}

// SendEmail renders templateName with data and sends it to one recipient.
func (c *Client) SendEmail(ctx context.Context, to string, templateName Template, data map[string]string) error {
	subject, text, html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	msg := &Message{
		From:     c.from,
		FromName: c.fromName,
		To:       to,
		Subject:  subject,
		Text:     text,
		HTML:     html,
	}

	if err := c.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("provider", c.transport.Name()).
		Str("template", string(templateName)).
		Msg("email sent")

	return nil
}
