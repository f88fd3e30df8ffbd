package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetLatestArtifact returns the latest stored version of an artifact, or a
// synthesized placeholder when nothing is stored.
// GET /apps/:app_name/users/:user_id/sessions/:session_id/artifacts/:artifact_name
func (h *Handler) GetLatestArtifact(c echo.Context) error {
	artifact, err := h.service.GetLatestArtifact(c.Request().Context(),
		c.Param("session_id"), c.Param("artifact_name"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, artifact)
}

// GetArtifactVersion returns a synthesized artifact labeled with the
// requested version; stored versions are never consulted.
// GET /apps/:app_name/users/:user_id/sessions/:session_id/artifacts/:artifact_name/versions/:version_id
func (h *Handler) GetArtifactVersion(c echo.Context) error {
	artifact := h.service.GetArtifactVersion(c.Param("artifact_name"), c.Param("version_id"))
	return c.JSON(http.StatusOK, artifact)
}
