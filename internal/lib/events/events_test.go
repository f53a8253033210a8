package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/model"
)

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
	closed    bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testReferral() *model.Referral {
	return &model.Referral{
		ID:            uuid.MustParse("3f0c5b8e-2f4a-4c1e-9a57-6b1d2f0e8c11"),
		ReferrerName:  "Asha",
		ReferrerEmail: "asha@example.com",
		RefereeName:   "Vikram",
		RefereeEmail:  "vikram@example.com",
		Course:        "Data Science",
		CreatedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "referrals", nopLogger())

	require.NoError(t, p.Publish(context.Background(), testReferral()))
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, "referrals", got.exchange)
	assert.Equal(t, RoutingKeyReferralCreated, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "3f0c5b8e-2f4a-4c1e-9a57-6b1d2f0e8c11", got.msg.MessageId)

	var body ReferralCreated
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "vikram@example.com", body.RefereeEmail)
	assert.Equal(t, "Data Science", body.Course)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p := newAMQPPublisher(&fakeChannel{err: errors.New("channel closed")}, "referrals", nopLogger())

	err := p.Publish(context.Background(), testReferral())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

func TestAMQPPublisher_ConcurrentPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "referrals", nopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish(context.Background(), testReferral()))
		}()
	}
	wg.Wait()

	assert.Len(t, ch.published, 20)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "referrals", nopLogger())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewPublisher_Disabled(t *testing.T) {
	p, err := NewPublisher(&config.EventsConfig{}, nopLogger())
	require.NoError(t, err)

	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), testReferral()))
	assert.NoError(t, p.Close())
}
