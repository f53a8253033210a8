// Package events announces stored referrals to other services over
// RabbitMQ. Publishing is optional and disabled by default.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/model"
)

// RoutingKeyReferralCreated is used for every stored referral.
const RoutingKeyReferralCreated = "referral.created"

// Publisher announces referral events.
type Publisher interface {
	Publish(ctx context.Context, referral *model.Referral) error
	Close() error
}

// ReferralCreated is the message body published for a new referral.
type ReferralCreated struct {
	ID            uuid.UUID `json:"id"`
	ReferrerName  string    `json:"referrerName"`
	ReferrerEmail string    `json:"referrerEmail"`
	RefereeName   string    `json:"refereeName"`
	RefereeEmail  string    `json:"refereeEmail"`
	Course        string    `json:"course"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newReferralCreated(r *model.Referral) ReferralCreated {
	return ReferralCreated{
		ID:            r.ID,
		ReferrerName:  r.ReferrerName,
		ReferrerEmail: r.ReferrerEmail,
		RefereeName:   r.RefereeName,
		RefereeEmail:  r.RefereeEmail,
		Course:        r.Course,
		CreatedAt:     r.CreatedAt,
	}
}

// NewPublisher returns an AMQP publisher when events are enabled and a
// no-op publisher otherwise.
func NewPublisher(cfg *config.EventsConfig, logger *zerolog.Logger) (Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("referral events disabled")
		return NopPublisher{}, nil
	}

	return DialAMQP(cfg, logger)
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *model.Referral) error { return nil }

func (NopPublisher) Close() error { return nil }
