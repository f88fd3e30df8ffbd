// Package http provides the HTTP server for the gateway.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentbridge/gateway/internal/config"
	"github.com/agentbridge/gateway/internal/service"
	v1 "github.com/agentbridge/gateway/internal/transport/http/v1"
	"github.com/agentbridge/gateway/internal/transport/ws"
)

// NewServer creates and configures the gateway's HTTP server: the REST and
// SSE surfaces plus the /ws endpoint.
func NewServer(svc *service.Service, wsServer *ws.Server, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	// Handlers
	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	e.GET("/ws", wsServer.HandleWebSocket)

	return e
}
