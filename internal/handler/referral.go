package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/model"
	"github.com/deppfellow/course-referral/internal/server"
	"github.com/deppfellow/course-referral/internal/service"
)

type ReferralHandler struct {
	Handler
	referralService *service.ReferralService
}

func NewReferralHandler(s *server.Server, referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		Handler:         NewHandler(s),
		referralService: referralService,
	}
}

// CreateReferral stores the referral and answers with it. A failed
// confirmation email does not fail the request.
func (h *ReferralHandler) CreateReferral(c echo.Context, payload *model.CreateReferralPayload) (*model.Referral, error) {
	return h.referralService.Create(c.Request().Context(), payload)
}

func (h *ReferralHandler) GetReferral(c echo.Context, payload *model.GetReferralPayload) (*model.Referral, error) {
	return h.referralService.GetByID(c.Request().Context(), payload.ID)
}
