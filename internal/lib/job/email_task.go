package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/course-referral/internal/lib/email"
)

const (
	// TaskReferralConfirmation is the job type name stored in Redis.
	TaskReferralConfirmation = "email:referral_confirmation"
)

// ReferralConfirmationPayload is serialized into the task and stored in Redis.
type ReferralConfirmationPayload struct {
	ReferralID string `json:"referral_id"`
	email.ReferralConfirmation
}

// NewReferralConfirmationTask constructs an Asynq task for the referrer's
// confirmation email.
//
// Options:
//   - MaxRetry(3): retry up to 3 times on failure
//   - Queue("default"): send into the "default" queue
//   - Timeout(30s): kill the task if handler runs longer than 30 seconds
func NewReferralConfirmationTask(referralID string, r email.ReferralConfirmation) (*asynq.Task, error) {
	payload, err := json.Marshal(ReferralConfirmationPayload{
		ReferralID:           referralID,
		ReferralConfirmation: r,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskReferralConfirmation,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueReferralConfirmation builds the task and pushes it onto the queue.
func EnqueueReferralConfirmation(ctx context.Context, q Enqueuer, referralID string, r email.ReferralConfirmation) (*asynq.TaskInfo, error) {
	task, err := NewReferralConfirmationTask(referralID, r)
	if err != nil {
		return nil, err
	}

	return q.EnqueueContext(ctx, task)
}
