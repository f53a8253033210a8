// Package handler is the first layer after the router.
//
// It binds and validates requests through the validation package, calls
// the service layer and writes the response. Errors are returned to the
// global error handler rather than written here.
package handler

import (
	"github.com/deppfellow/course-referral/internal/server"
	"github.com/deppfellow/course-referral/internal/service"
)

// Handlers groups every HTTP handler so the router takes a single value.
type Handlers struct {
	Root     *RootHandler
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Referral *ReferralHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Root:     NewRootHandler(s),
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Referral: NewReferralHandler(s, services.Referral),
	}
}
