package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/agent"
)

// GetAgentURL returns the current remote agent URL.
// GET /config/agent-url
func (h *Handler) GetAgentURL(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"remote_agent_url": h.service.Agent().URL(),
	})
}

// UpdateAgentURL replaces the remote agent URL at runtime. The only
// validation is non-emptiness.
// PUT /config/agent-url
func (h *Handler) UpdateAgentURL(c echo.Context) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.service.Agent().SetURL(body.URL); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL is required"})
	}
	log.Printf("Updated remote agent URL to: %s", body.URL)
	return c.JSON(http.StatusOK, map[string]string{
		"status":           "updated",
		"remote_agent_url": body.URL,
	})
}

// TestAgent verifies communication with the remote agent using the probe
// timeout. Failures are reported in the body, never as an HTTP error.
// POST /test-agent
func (h *Handler) TestAgent(c echo.Context) error {
	text := "What can you do?"
	if body, err := io.ReadAll(c.Request().Body); err == nil && len(body) > 0 {
		var msg struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &msg); err == nil {
			text = msg.Text // empty falls back to the probe default
		}
	}

	envelope, resp, err := h.service.Agent().Probe(c.Request().Context(), text)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"status":           "error",
			"remote_agent_url": h.service.Agent().URL(),
			"error":            probeErrorText(err),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":           "success",
		"remote_agent_url": h.service.Agent().URL(),
		"request":          envelope,
		"response":         resp,
	})
}

func probeErrorText(err error) string {
	var te *agent.TransportError
	if errors.As(err, &te) {
		if te.Cause != nil {
			return "Connection error: " + te.Cause.Error()
		}
		return "HTTP " + strconv.Itoa(te.Status) + ": " + te.Body
	}
	return "Unexpected error: " + err.Error()
}
