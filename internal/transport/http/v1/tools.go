package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// ListTools lists the tools offered to sessions in the requested mode.
func (h *Handler) ListTools(c echo.Context) error {
	mode := domain.InputModeText
	if raw := c.QueryParam("mode"); raw != "" {
		parsed, ok := domain.ParseInputMode(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "mode must be text or voice"})
		}
		mode = parsed
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"mode":  mode,
		"tools": h.service.ToolDefinitions(mode),
	})
}
