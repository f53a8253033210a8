package email

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"

	"github.com/deppfellow/course-referral/internal/config"
)

// ResendTransport sends through the Resend HTTP API.
type ResendTransport struct {
	client *resend.Client
}

func NewResendTransport(cfg *config.ResendConfig) *ResendTransport {
	return &ResendTransport{client: resend.NewClient(cfg.APIKey)}
}

func (t *ResendTransport) Name() string {
	return config.ProviderResend
}

func (t *ResendTransport) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.fromHeader(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return errors.Wrap(err, "resend send")
	}
	return nil
}
