// Package http provides the HTTP server implementation for the dialog engine.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/callbot/internal/service"
	"github.com/xiaot623/gogo/callbot/internal/transport/http/lexhook"
	v1 "github.com/xiaot623/gogo/callbot/internal/transport/http/v1"
	"github.com/xiaot623/gogo/callbot/internal/transport/ws"
)

// NewServer creates and configures the HTTP server.
// It serves the Lex code hook, the read API and the text chat socket.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	lexHandler := lexhook.NewHandler(svc)
	v1Handler := v1.NewHandler(svc)
	chatServer := ws.NewServer(svc)

	// Register Routes
	lexHandler.RegisterRoutes(e)
	v1Handler.RegisterRoutes(e)
	chatServer.RegisterRoutes(e)

	return e
}
