package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetEventTrace returns the trace view for an arbitrary trace id. Trace
// collection by id is unimplemented; the shape is stable and empty.
// GET /debug/trace/:trace_id
func (h *Handler) GetEventTrace(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"traceId":  c.Param("trace_id"),
		"events":   []any{},
		"timeline": []any{},
	})
}

// GetSessionTrace derives a trace view from the session's event log.
// GET /debug/trace/session/:session_id
func (h *Handler) GetSessionTrace(c echo.Context) error {
	trace, err := h.service.GetSessionTrace(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, trace)
}

// GetEventGraph returns the event dependency graph. Graph derivation is
// unimplemented; a fixed placeholder keeps the visualization wired.
// GET /apps/:app_name/users/:user_id/sessions/:session_id/events/:event_id/graph
func (h *Handler) GetEventGraph(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"dotSrc": "digraph G { A -> B; B -> C; }",
	})
}
