package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/handler"
	"github.com/deppfellow/course-referral/internal/model"
)

func registerReferralRoutes(api *echo.Group, h *handler.Handlers) {
	referrals := api.Group("/referrals")

	referrals.POST("", handler.Handle(
		h.Referral.Handler,
		h.Referral.CreateReferral,
		http.StatusCreated,
		&model.CreateReferralPayload{},
	))

	referrals.GET("/:id", handler.Handle(
		h.Referral.Handler,
		h.Referral.GetReferral,
		http.StatusOK,
		&model.GetReferralPayload{},
	))
}
