package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListEvalSets lists all evaluation sets. The app path segment is accepted
// but does not partition the sets.
// GET /apps/:app_name/eval_sets
func (h *Handler) ListEvalSets(c echo.Context) error {
	sets, err := h.service.ListEvalSets(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"evalSets": sets})
}

// CreateEvalSet creates a new evaluation set named by the path id.
// POST /apps/:app_name/eval_sets/:eval_set_id
func (h *Handler) CreateEvalSet(c echo.Context) error {
	setID := c.Param("eval_set_id")
	if _, err := h.service.CreateEvalSet(c.Request().Context(), setID); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "created",
		"evalSetId": setID,
	})
}

// ListEvalCases lists the cases in a set.
// GET /apps/:app_name/eval_sets/:eval_set_id/evals
func (h *Handler) ListEvalCases(c echo.Context) error {
	cases, err := h.service.ListEvalCases(c.Request().Context(), c.Param("eval_set_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cases": cases})
}

// AddSessionToEvalSet snapshots a session into the set as a new case.
// POST /apps/:app_name/eval_sets/:eval_set_id/add_session
func (h *Handler) AddSessionToEvalSet(c echo.Context) error {
	var body struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	evalCase, err := h.service.AddSessionToEvalSet(c.Request().Context(), c.Param("eval_set_id"), body.SessionID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "added",
		"evalCaseId": evalCase.ID,
	})
}

// RunEvaluation is a stub by contract: it acknowledges the request with a
// generated result id and performs no scoring.
// POST /apps/:app_name/eval_sets/:eval_set_id/run_eval
func (h *Handler) RunEvaluation(c echo.Context) error {
	var body struct {
		EvalIDs     []string `json:"evalIds"`
		EvalMetrics []string `json:"evalMetrics"`
	}
	_ = c.Bind(&body)

	resultID := h.service.RunEvaluation(body.EvalIDs, body.EvalMetrics)
	return c.JSON(http.StatusOK, map[string]string{
		"status":       "started",
		"evalResultId": resultID,
	})
}

// ListEvalResults returns the mock results list.
// GET /apps/:app_name/eval_results
func (h *Handler) ListEvalResults(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"results": []any{}})
}

// GetEvalResult returns the mock result shape for any id.
// GET /apps/:app_name/eval_results/:result_id
func (h *Handler) GetEvalResult(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"id":      c.Param("result_id"),
		"status":  "completed",
		"metrics": map[string]any{},
	})
}
