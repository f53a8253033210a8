// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/handler"
	"github.com/deppfellow/course-referral/internal/middleware"
	"github.com/deppfellow/course-referral/internal/server"
)

// NewRouter builds the Echo instance with global middleware and every route.
//
// Middleware order matters: the request ID exists before anything logs,
// the New Relic transaction before the context logger reads trace ids,
// and the origin guard rejects before CORS or handlers run.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	router.IPExtractor = mw.Global.IPExtractor()

	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.OriginGuard(),
		mw.Global.CORS(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api", mw.RateLimit.Limit())
	registerReferralRoutes(api, h)

	return router
}
