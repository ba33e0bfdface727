// Package lexhook serves the Amazon Lex V2 fulfilment code hook over HTTP.
package lexhook

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/lex"
	"github.com/xiaot623/gogo/callbot/internal/service"
)

// Handler handles Lex fulfilment requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the code hook route.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/lex/fulfillment", h.Fulfill)
}

// Fulfill processes one Lex V2 event.
func (h *Handler) Fulfill(c echo.Context) error {
	var event lex.Event
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := lex.Handle(c.Request().Context(), h.service, &event)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		slog.Error("lex fulfilment failed", "session_id", event.SessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, resp)
}
