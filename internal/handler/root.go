package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/course-referral/internal/server"
)

// Greeting is returned by GET /.
const Greeting = "Course referral API is running"

type RootHandler struct {
	Handler
}

func NewRootHandler(s *server.Server) *RootHandler {
	return &RootHandler{Handler: NewHandler(s)}
}

func (h *RootHandler) Greet(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": Greeting})
}
