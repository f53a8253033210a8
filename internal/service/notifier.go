package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/lib/email"
	"github.com/deppfellow/course-referral/internal/lib/job"
	"github.com/deppfellow/course-referral/internal/model"
	"github.com/deppfellow/course-referral/internal/server"
)

// Notifier tells the referrer their referral was received.
type Notifier interface {
	NotifyReferralCreated(ctx context.Context, referral *model.Referral) error
}

// NewNotifier picks inline or queued delivery from the email config.
func NewNotifier(s *server.Server) (Notifier, error) {
	switch s.Config.Email.Delivery {
	case config.DeliverySync:
		return NewEmailNotifier(s.Email), nil
	case config.DeliveryQueue:
		if s.Job == nil {
			return nil, errors.New("queued email delivery requires the job service")
		}
		return NewQueueNotifier(s.Job.Client), nil
	default:
		return nil, fmt.Errorf("unsupported email delivery %q", s.Config.Email.Delivery)
	}
}

func confirmationFor(r *model.Referral) email.ReferralConfirmation {
	return email.ReferralConfirmation{
		ReferrerName:  r.ReferrerName,
		ReferrerEmail: r.ReferrerEmail,
		RefereeName:   r.RefereeName,
		Course:        r.Course,
	}
}

// EmailNotifier sends the confirmation inline.
type EmailNotifier struct {
	mailer job.Mailer
}

func NewEmailNotifier(mailer job.Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) NotifyReferralCreated(ctx context.Context, referral *model.Referral) error {
	return n.mailer.SendReferralConfirmation(ctx, confirmationFor(referral))
}

// QueueNotifier enqueues the confirmation for the job worker.
type QueueNotifier struct {
	queue job.Enqueuer
}

func NewQueueNotifier(queue job.Enqueuer) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) NotifyReferralCreated(ctx context.Context, referral *model.Referral) error {
	_, err := job.EnqueueReferralConfirmation(ctx, n.queue, referral.ID.String(), confirmationFor(referral))
	if err != nil {
		return fmt.Errorf("failed to enqueue referral confirmation: %w", err)
	}
	return nil
}
