package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// ListSessions returns a caller's recent sessions.
func (h *Handler) ListSessions(c echo.Context) error {
	callerID := c.Param("caller_id")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	sessions, err := h.service.ListSessions(c.Request().Context(), callerID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"caller_id": callerID,
		"sessions":  sessions,
	})
}

// GetSession returns one day's session.
func (h *Handler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("caller_id"), c.Param("date"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, session)
}
