package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleReferralConfirmationTask sends the confirmation described by the
// task payload. A returned error makes Asynq schedule a retry; a malformed
// payload is never retried.
func (j *JobService) handleReferralConfirmationTask(ctx context.Context, t *asynq.Task) error {
	var p ReferralConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal referral confirmation payload: %v: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", "referral_confirmation").
		Str("referral_id", p.ReferralID).
		Str("to", p.ReferrerEmail).
		Msg("Processing referral confirmation task")

	if err := j.mailer.SendReferralConfirmation(ctx, p.ReferralConfirmation); err != nil {
		j.logger.Error().
			Str("type", "referral_confirmation").
			Str("referral_id", p.ReferralID).
			Str("to", p.ReferrerEmail).
			Err(err).
			Msg("Failed to send referral confirmation")
		return err
	}

	j.logger.Info().
		Str("type", "referral_confirmation").
		Str("referral_id", p.ReferralID).
		Str("to", p.ReferrerEmail).
		Msg("Successfully sent referral confirmation")

	return nil
}
