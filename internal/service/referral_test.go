package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/course-referral/internal/errs"
	"github.com/deppfellow/course-referral/internal/lib/email"
	"github.com/deppfellow/course-referral/internal/lib/job"
	"github.com/deppfellow/course-referral/internal/model"
)

type memoryStore struct {
	mu        sync.Mutex
	referrals []*model.Referral
	err       error
}

func (m *memoryStore) Create(_ context.Context, p *model.CreateReferralPayload) (*model.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r := &model.Referral{
		ID:            uuid.New(),
		ReferrerName:  p.ReferrerName,
		ReferrerEmail: p.ReferrerEmail,
		RefereeName:   p.RefereeName,
		RefereeEmail:  p.RefereeEmail,
		Course:        p.Course,
		CreatedAt:     time.Now().UTC(),
	}
	m.referrals = append(m.referrals, r)
	return r, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*model.Referral, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.referrals {
		if r.ID.String() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("table:referrals: %w", pgx.ErrNoRows)
}

type recordingNotifier struct {
	notified []*model.Referral
	err      error
}

func (n *recordingNotifier) NotifyReferralCreated(_ context.Context, r *model.Referral) error {
	n.notified = append(n.notified, r)
	return n.err
}

type recordingPublisher struct {
	published []*model.Referral
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, r *model.Referral) error {
	p.published = append(p.published, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func payload() *model.CreateReferralPayload {
	return &model.CreateReferralPayload{
		ReferrerName:  "Asha",
		ReferrerEmail: "asha@example.com",
		RefereeName:   "Vikram",
		RefereeEmail:  "vikram@example.com",
		Course:        "Data Science",
	}
}

func newTestService(store ReferralStore, notifier Notifier, publisher *recordingPublisher) *ReferralService {
	logger := zerolog.Nop()
	return NewReferralService(&logger, store, notifier, publisher)
}

func TestReferralService_Create(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	svc := newTestService(store, notifier, publisher)

	referral, err := svc.Create(context.Background(), payload())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, referral.ID)
	assert.Equal(t, "Vikram", referral.RefereeName)
	require.Len(t, store.referrals, 1)
	assert.Equal(t, []*model.Referral{referral}, notifier.notified)
	assert.Equal(t, []*model.Referral{referral}, publisher.published)
}

func TestReferralService_Create_StoreFailureSkipsNotification(t *testing.T) {
	store := &memoryStore{err: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	svc := newTestService(store, notifier, publisher)

	referral, err := svc.Create(context.Background(), payload())
	assert.Nil(t, referral)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	assert.Empty(t, notifier.notified)
	assert.Empty(t, publisher.published)
}

func TestReferralService_Create_NotificationFailureKeepsReferral(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{err: errors.New("smtp: 535 authentication failed")}
	publisher := &recordingPublisher{err: errors.New("channel closed")}
	svc := newTestService(store, notifier, publisher)

	referral, err := svc.Create(context.Background(), payload())
	require.NoError(t, err)
	require.NotNil(t, referral)

	assert.Len(t, store.referrals, 1)
	assert.Len(t, notifier.notified, 1)
}

func TestReferralService_Create_IdenticalSubmissionsAreIndependent(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &recordingNotifier{}, &recordingPublisher{})

	first, err := svc.Create(context.Background(), payload())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), payload())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.referrals, 2)
}

func TestReferralService_Create_FollowUpSurvivesCancel(t *testing.T) {
	store := &memoryStore{}
	var notifyErr error
	notifier := notifierFunc(func(ctx context.Context, _ *model.Referral) error {
		notifyErr = ctx.Err()
		return nil
	})
	svc := newTestService(store, notifier, &recordingPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, payload())
	require.NoError(t, err)
	assert.NoError(t, notifyErr)
}

func TestReferralService_GetByID(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &recordingNotifier{}, &recordingPublisher{})

	created, err := svc.Create(context.Background(), payload())
	require.NoError(t, err)

	found, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = svc.GetByID(context.Background(), uuid.NewString())
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

type notifierFunc func(ctx context.Context, r *model.Referral) error

func (f notifierFunc) NotifyReferralCreated(ctx context.Context, r *model.Referral) error {
	return f(ctx, r)
}

type fakeMailer struct {
	sent []email.ReferralConfirmation
}

func (f *fakeMailer) SendReferralConfirmation(_ context.Context, r email.ReferralConfirmation) error {
	f.sent = append(f.sent, r)
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func storedReferral() *model.Referral {
	return &model.Referral{
		ID:            uuid.New(),
		ReferrerName:  "Asha",
		ReferrerEmail: "asha@example.com",
		RefereeName:   "Vikram",
		RefereeEmail:  "vikram@example.com",
		Course:        "Data Science",
	}
}

func TestEmailNotifier_SendsToReferrer(t *testing.T) {
	mailer := &fakeMailer{}

	require.NoError(t, NewEmailNotifier(mailer).NotifyReferralCreated(context.Background(), storedReferral()))

	assert.Equal(t, []email.ReferralConfirmation{{
		ReferrerName:  "Asha",
		ReferrerEmail: "asha@example.com",
		RefereeName:   "Vikram",
		Course:        "Data Science",
	}}, mailer.sent)
}

func TestQueueNotifier(t *testing.T) {
	q := &fakeEnqueuer{}

	require.NoError(t, NewQueueNotifier(q).NotifyReferralCreated(context.Background(), storedReferral()))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, job.TaskReferralConfirmation, q.tasks[0].Type())

	q.err = errors.New("redis: connection refused")
	err := NewQueueNotifier(q).NotifyReferralCreated(context.Background(), storedReferral())
	assert.ErrorContains(t, err, "failed to enqueue referral confirmation")
}
