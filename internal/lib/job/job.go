// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// Referral confirmations go through here when email delivery is "queue",
// so a slow or failing mail provider never holds up the HTTP response and
// failed sends are retried.
package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/lib/email"
)

// Enqueuer pushes tasks into the queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server *asynq.Server

	// mailer sends the emails the handlers are asked to deliver.
	mailer Mailer

	logger *zerolog.Logger
}

// Mailer is the part of the email client the task handlers use.
type Mailer interface {
	SendReferralConfirmation(ctx context.Context, r email.ReferralConfirmation) error
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks the larger share of the 10 workers:
// roughly 6 critical, 3 default and 1 low out of every 10 tasks.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, mailer Mailer) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		mailer: mailer,
		logger: logger,
	}
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReferralConfirmation, j.handleReferralConfirmationTask)
	return mux
}

// Start registers the task handlers and starts the workers.
// It does not block.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	return j.server.Start(j.Mux())
}

// Stop waits for in-flight tasks, then closes the enqueue client.
// It is a no-op on a nil JobService.
func (j *JobService) Stop() {
	if j == nil {
		return
	}

	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()

	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
