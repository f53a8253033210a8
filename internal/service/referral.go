package service

import (
	"context"

	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/lib/events"
	"github.com/deppfellow/course-referral/internal/model"
	"github.com/deppfellow/course-referral/internal/sqlerr"
)

// ReferralStore persists referrals.
type ReferralStore interface {
	Create(ctx context.Context, payload *model.CreateReferralPayload) (*model.Referral, error)
	GetByID(ctx context.Context, id string) (*model.Referral, error)
}

type ReferralService struct {
	logger    *zerolog.Logger
	store     ReferralStore
	notifier  Notifier
	publisher events.Publisher
}

func NewReferralService(logger *zerolog.Logger, store ReferralStore, notifier Notifier, publisher events.Publisher) *ReferralService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &ReferralService{
		logger:    logger,
		store:     store,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Create stores the referral, then notifies the referrer and publishes a
// referral.created event. Only the store can fail the call: notification
// and publishing errors are logged and reported to APM, and the stored
// referral is returned regardless.
func (s *ReferralService) Create(ctx context.Context, payload *model.CreateReferralPayload) (*model.Referral, error) {
	logger := s.loggerFrom(ctx)

	referral, err := s.store.Create(ctx, payload)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store referral")
		return nil, sqlerr.HandleError(err)
	}

	logger.Info().
		Str("referral_id", referral.ID.String()).
		Str("course", referral.Course).
		Msg("referral stored")

	// The referral is already stored; a client disconnect must not abort
	// the follow-up work.
	followUp := context.WithoutCancel(ctx)
	txn := newrelic.FromContext(ctx)

	if err := s.notifier.NotifyReferralCreated(followUp, referral); err != nil {
		logger.Error().
			Err(err).
			Str("referral_id", referral.ID.String()).
			Msg("failed to send referral confirmation")
		txn.NoticeError(nrpkgerrors.Wrap(errors.Wrap(err, "referral confirmation")))
	}

	if err := s.publisher.Publish(followUp, referral); err != nil {
		logger.Error().
			Err(err).
			Str("referral_id", referral.ID.String()).
			Msg("failed to publish referral event")
		txn.NoticeError(nrpkgerrors.Wrap(errors.Wrap(err, "referral event")))
	}

	return referral, nil
}

func (s *ReferralService) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	referral, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return referral, nil
}

// loggerFrom prefers the request-scoped logger stored in ctx.
func (s *ReferralService) loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}
