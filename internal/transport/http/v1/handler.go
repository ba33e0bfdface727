// Package v1 provides the read API for sessions and tools.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/callbot/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/sessions/:caller_id", h.ListSessions)
	e.GET("/v1/sessions/:caller_id/:date", h.GetSession)
	e.GET("/v1/tools", h.ListTools)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
