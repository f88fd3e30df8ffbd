package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/domain"
)

// RunSSE submits a chat turn and streams back the reply as a
// text-event-stream frame. The chat surface always yields a frame, even
// when the remote agent is unreachable.
// POST /run_sse
func (h *Handler) RunSSE(c echo.Context) error {
	var req domain.AgentRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	frame := h.service.RunTurn(c.Request().Context(), &req)
	return writeFrame(resp, frame)
}

// TestSSE streams a fixed frame so the frontend can verify that streaming
// works end to end.
// GET /test-sse
func (h *Handler) TestSSE(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	frame := &domain.StreamFrame{
		ID:     "test-123",
		Author: "model",
		Content: domain.FrameContent{
			Parts: []domain.MessagePart{{Text: "This is a test message to verify SSE works"}},
		},
	}
	return writeFrame(resp, frame)
}

func writeFrame(resp *echo.Response, frame *domain.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
		// Best effort: the client may have gone away mid-turn.
		return nil
	}
	resp.Flush()
	return nil
}
