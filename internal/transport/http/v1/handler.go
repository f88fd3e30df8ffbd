// Package v1 provides the gateway's HTTP handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/service"
	"github.com/agentbridge/gateway/internal/store"
)

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

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/list-apps", h.ListApps)

	// Remote agent configuration
	e.GET("/config/agent-url", h.GetAgentURL)
	e.PUT("/config/agent-url", h.UpdateAgentURL)
	e.POST("/test-agent", h.TestAgent)

	// Chat streaming
	e.GET("/test-sse", h.TestSSE)
	e.POST("/run_sse", h.RunSSE)

	// Session management
	e.POST("/apps/:app_name/users/:user_id/sessions", h.CreateSession)
	e.GET("/apps/:app_name/users/:user_id/sessions", h.ListSessions)
	e.GET("/apps/:app_name/users/:user_id/sessions/:session_id", h.GetSession)
	e.DELETE("/apps/:app_name/users/:user_id/sessions/:session_id", h.DeleteSession)

	// Evaluation
	e.GET("/apps/:app_name/eval_sets", h.ListEvalSets)
	e.POST("/apps/:app_name/eval_sets/:eval_set_id", h.CreateEvalSet)
	e.GET("/apps/:app_name/eval_sets/:eval_set_id/evals", h.ListEvalCases)
	e.POST("/apps/:app_name/eval_sets/:eval_set_id/add_session", h.AddSessionToEvalSet)
	e.POST("/apps/:app_name/eval_sets/:eval_set_id/run_eval", h.RunEvaluation)
	e.GET("/apps/:app_name/eval_results", h.ListEvalResults)
	e.GET("/apps/:app_name/eval_results/:result_id", h.GetEvalResult)

	// Debug/tracing
	e.GET("/debug/trace/session/:session_id", h.GetSessionTrace)
	e.GET("/debug/trace/:trace_id", h.GetEventTrace)
	e.GET("/apps/:app_name/users/:user_id/sessions/:session_id/events/:event_id/graph", h.GetEventGraph)

	// Artifacts
	e.GET("/apps/:app_name/users/:user_id/sessions/:session_id/artifacts/:artifact_name", h.GetLatestArtifact)
	e.GET("/apps/:app_name/users/:user_id/sessions/:session_id/artifacts/:artifact_name/versions/:version_id", h.GetArtifactVersion)
}

// Root returns the server status banner.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Agent Gateway Server",
		"status":       "running",
		"remote_agent": h.service.Agent().URL(),
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ListApps returns the configured application catalog.
func (h *Handler) ListApps(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Apps())
}

// jsonError maps the service/store error taxonomy to client statuses. The
// Forbidden response never reveals whether the session exists under a
// different owner.
func jsonError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
	case errors.Is(err, store.ErrEvalSetNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Eval set not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
