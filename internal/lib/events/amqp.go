package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/model"
)

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to a durable topic exchange.
// An AMQP channel is not safe for concurrent publishes, so mu guards it.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   *zerolog.Logger
}

// DialAMQP connects to cfg.URL and declares the exchange.
func DialAMQP(cfg *config.EventsConfig, logger *zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info().Str("exchange", cfg.Exchange).Msg("connected to rabbitmq")

	p := newAMQPPublisher(ch, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string, logger *zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}
}

// Publish sends a referral.created message.
func (p *AMQPPublisher) Publish(ctx context.Context, referral *model.Referral) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(newReferralCreated(referral))
	if err != nil {
		return fmt.Errorf("failed to marshal referral event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    referral.ID.String(),
		Timestamp:    time.Now().UTC(),
		Type:         RoutingKeyReferralCreated,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Publish(p.exchange, RoutingKeyReferralCreated, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish referral event: %w", err)
	}

	p.logger.Debug().
		Str("referral_id", referral.ID.String()).
		Str("routing_key", RoutingKeyReferralCreated).
		Msg("published referral event")

	return nil
}

// Close closes the channel and then the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to close rabbitmq channel")
	}

	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
