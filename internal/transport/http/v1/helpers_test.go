package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/agent"
	"github.com/agentbridge/gateway/internal/config"
	"github.com/agentbridge/gateway/internal/policy"
	"github.com/agentbridge/gateway/internal/service"
	"github.com/agentbridge/gateway/internal/store"
)

func newTestHandler(t *testing.T, agentURL string) *Handler {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}
	cfg := &config.Config{
		Apps: []string{"sample-app", "demo-agent", "test-application"},
	}
	client := agent.NewClient(agentURL, 2*time.Second, 2*time.Second)
	return NewHandler(service.New(store.NewMemoryStore(), client, engine, cfg))
}

// newContext builds an echo test context for a JSON request.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}
