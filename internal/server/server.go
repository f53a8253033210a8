// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client
//   - background job worker server (asynq)
//   - referral event publisher
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/database"
	"github.com/deppfellow/course-referral/internal/lib/email"
	"github.com/deppfellow/course-referral/internal/lib/events"
	"github.com/deppfellow/course-referral/internal/lib/job"
	loggerPkg "github.com/deppfellow/course-referral/internal/logger"
)

// Server is the application container that holds shared resources.
// It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	// Redis is nil when no address is configured.
	Redis *redis.Client

	// Email sends notifications directly; the job worker shares it.
	Email *email.Client

	// Job is nil unless notifications are delivered through the queue.
	Job *job.JobService

	Events events.Publisher

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// Redis is optional for inline delivery: a failed ping is logged and
// startup continues. With queued delivery Redis backs the job service
// and a failed ping aborts startup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}

	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Address,
		})

		if loggerService.GetApplication() != nil {
			redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
		}

		server.Redis = redisClient

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			if cfg.Email.Delivery == config.DeliveryQueue {
				server.closeResources()
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			logger.Error().Err(err).Msg("failed to connect to Redis, continuing without Redis")
		}
	}

	emailClient, err := email.NewClient(context.Background(), &cfg.Email, logger)
	if err != nil {
		server.closeResources()
		return nil, fmt.Errorf("failed to initialize email client: %w", err)
	}
	server.Email = emailClient

	if cfg.Email.Delivery == config.DeliveryQueue {
		jobService := job.NewJobService(logger, cfg, emailClient)
		if err := jobService.Start(); err != nil {
			server.closeResources()
			return nil, fmt.Errorf("failed to start job service: %w", err)
		}
		server.Job = jobService
	}

	publisher, err := events.NewPublisher(&cfg.Events, logger)
	if err != nil {
		server.closeResources()
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	server.Events = publisher

	return server, nil
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msgf("Server is running on port %s", s.Config.Server.Port)

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.closeResources(); err != nil {
		return err
	}

	s.LoggerService.Shutdown()

	return nil
}

// closeResources releases whatever New managed to open. Queued deliveries
// drain before the clients they use are closed.
func (s *Server) closeResources() error {
	s.Job.Stop()

	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
