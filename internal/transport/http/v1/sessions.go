package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/domain"
)

// CreateSession creates a new session, or imports one when the request
// body carries events. The original service registered both behaviors on
// the same route, with the import registration silently shadowing the
// create; here the body decides explicitly.
// POST /apps/:app_name/users/:user_id/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	appName := c.Param("app_name")
	userID := c.Param("user_id")
	ctx := c.Request().Context()

	var body struct {
		Events []domain.Event `json:"events"`
	}
	// An empty or non-JSON body means a plain create.
	_ = c.Bind(&body)

	if len(body.Events) > 0 {
		session, err := h.service.ImportSession(ctx, appName, userID, body.Events)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{
			"sessionId": session.ID,
			"status":    "imported",
		})
	}

	session, err := h.service.CreateSession(ctx, appName, userID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"sessionId": session.ID,
		"status":    "created",
	})
}

// ListSessions lists all sessions for a user in an app.
// GET /apps/:app_name/users/:user_id/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.ListSessions(c.Request().Context(), c.Param("app_name"), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession returns the full session including events and state.
// GET /apps/:app_name/users/:user_id/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(),
		c.Param("session_id"), c.Param("app_name"), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// DeleteSession deletes a session.
// DELETE /apps/:app_name/users/:user_id/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	err := h.service.DeleteSession(c.Request().Context(),
		c.Param("session_id"), c.Param("app_name"), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
