package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/config"
	"github.com/deppfellow/course-referral/internal/middleware"
	"github.com/deppfellow/course-referral/internal/server"
)

// HealthCheck pings one dependency. A failing check only marks the
// service unhealthy when Required is set.
type HealthCheck struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler checks the database and, when configured, Redis.
// Redis only counts against overall health when it backs the email queue.
func NewHealthHandler(s *server.Server) *HealthHandler {
	obs := s.Config.Observability

	var checks []HealthCheck
	if obs.HasCheck("database") && s.DB != nil {
		checks = append(checks, HealthCheck{Name: "database", Required: true, Ping: s.DB.Ping})
	}
	if obs.HasCheck("redis") && s.Redis != nil {
		checks = append(checks, HealthCheck{
			Name:     "redis",
			Required: s.Config.Email.Delivery == config.DeliveryQueue,
			Ping: func(ctx context.Context) error {
				return s.Redis.Ping(ctx).Err()
			},
		})
	}

	return NewHealthHandlerWithChecks(s, obs.HealthChecks.Timeout, checks...)
}

func NewHealthHandlerWithChecks(s *server.Server, timeout time.Duration, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
		timeout: timeout,
	}
}

// CheckHealth answers 200 when every required check passes and 503
// otherwise, listing each check's status and response time.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{}, len(h.checks))
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.Ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			checks[check.Name] = map[string]interface{}{
				"status":        "unhealthy",
				"required":      check.Required,
				"response_time": elapsed.String(),
				"error":         err.Error(),
			}

			if check.Required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.Name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			h.recordHealthCheckError(check.Name, elapsed, err)
			continue
		}

		checks[check.Name] = map[string]interface{}{
			"status":        "healthy",
			"required":      check.Required,
			"response_time": elapsed.String(),
		}

		logger.Debug().
			Str("check", check.Name).
			Dur("response_time", elapsed).
			Msg("health check passed")
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("service unhealthy")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) recordHealthCheckError(check string, elapsed time.Duration, err error) {
	nrApp := h.server.LoggerService.GetApplication()
	if nrApp == nil {
		return
	}

	nrApp.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
