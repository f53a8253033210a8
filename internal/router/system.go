package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/handler"
	"github.com/deppfellow/course-referral/static"
)

// registerSystemRoutes registers the endpoints outside the referral API:
// greeting, health and docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Root.Greet)
	r.GET("/status", h.Health.CheckHealth)
	r.StaticFS("/static", static.FS)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
