package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentbridge/gateway/internal/domain"
)

func runRequest(sessionID, text string) *domain.AgentRunRequest {
	return &domain.AgentRunRequest{
		AppName:   "sample-app",
		UserID:    "alice",
		SessionID: sessionID,
		NewMessage: domain.NewMessage{
			Parts: []domain.MessagePart{{Type: "text", Text: text}},
		},
	}
}

func TestRunTurnHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"the agent answer"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sample-app", "alice")

	frame := svc.RunTurn(ctx, runRequest(session.ID, "what is up"))
	if frame == nil || frame.ID == "" || frame.Author != "model" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if len(frame.Content.Parts) != 1 || frame.Content.Parts[0].Text != "the agent answer" {
		t.Fatalf("unexpected frame content: %+v", frame.Content)
	}

	got, err := svc.GetSession(ctx, session.ID, "sample-app", "alice")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Events) != 2 {
		t.Fatalf("expected user + agent events, got %d", len(got.Events))
	}
	if got.Events[0].Type != domain.EventTypeUserMessage || got.Events[0].Role != domain.RoleUser {
		t.Fatalf("unexpected first event: %+v", got.Events[0])
	}
	if got.Events[1].Type != domain.EventTypeAgentResponse || got.Events[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected second event: %+v", got.Events[1])
	}
	if got.Events[1].RawResponse == nil {
		t.Fatal("agent event must retain the raw payload")
	}

	if got.State["messageCount"] != 2 {
		t.Fatalf("unexpected messageCount: %v", got.State["messageCount"])
	}
	if got.State["lastAgentResponse"] != "the agent answer" {
		t.Fatalf("unexpected lastAgentResponse: %v", got.State["lastAgentResponse"])
	}
	if _, ok := got.State["lastActivity"].(string); !ok {
		t.Fatalf("lastActivity must be a timestamp string: %v", got.State["lastActivity"])
	}
}

func TestRunTurnPlaceholderSessionSynthesized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()

	frame := svc.RunTurn(ctx, runRequest("undefined", "hi"))
	if frame.Content.Parts[0].Text != "ok" {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	summaries, err := svc.ListSessions(ctx, "sample-app", "alice")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].EventCount != 2 {
		t.Fatalf("expected one synthesized session with two events, got %+v", summaries)
	}
}

func TestRunTurnTruncatesStoredResponse(t *testing.T) {
	long := strings.Repeat("x", 250)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"` + long + `"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sample-app", "alice")

	frame := svc.RunTurn(ctx, runRequest(session.ID, "hi"))
	if frame.Content.Parts[0].Text != long {
		t.Fatal("the frame itself must carry the full text")
	}

	got, _ := svc.GetSession(ctx, session.ID, "sample-app", "alice")
	stored, _ := got.State["lastAgentResponse"].(string)
	if stored != strings.Repeat("x", 100)+"..." {
		t.Fatalf("unexpected truncation: %q", stored)
	}
}

func TestRunTurnShortResponseStoredVerbatim(t *testing.T) {
	short := strings.Repeat("y", 50)
	if got := truncateResponse(short); got != short {
		t.Fatalf("short responses must not be truncated: %q", got)
	}
	exact := strings.Repeat("z", 100)
	if got := truncateResponse(exact); got != exact {
		t.Fatalf("boundary-length responses must not be truncated: %q", got)
	}
}

func TestRunTurnAgentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sample-app", "alice")

	frame := svc.RunTurn(ctx, runRequest(session.ID, "hi"))
	if frame.Content.Parts[0].Text != "Agent error: 500" {
		t.Fatalf("unexpected error frame: %+v", frame.Content)
	}

	// The user turn is recorded but no agent event is appended on failure.
	got, _ := svc.GetSession(ctx, session.ID, "sample-app", "alice")
	if len(got.Events) != 1 || got.Events[0].Type != domain.EventTypeUserMessage {
		t.Fatalf("unexpected events after failed call: %+v", got.Events)
	}
	if len(got.State) != 0 {
		t.Fatalf("state must be untouched after failed call: %+v", got.State)
	}
}

func TestRunTurnAgentUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "sample-app", "alice")

	frame := svc.RunTurn(ctx, runRequest(session.ID, "hi"))
	if frame.Content.Parts[0].Text != "Could not connect to remote agent. Please check that the agent is running." {
		t.Fatalf("unexpected error frame: %+v", frame.Content)
	}
}

func TestMessageText(t *testing.T) {
	withParts := domain.NewMessage{Parts: []domain.MessagePart{{Text: "from parts"}}, Text: "flat"}
	if got := messageText(withParts); got != "from parts" {
		t.Fatalf("parts must win: %q", got)
	}
	flatOnly := domain.NewMessage{Text: "flat"}
	if got := messageText(flatOnly); got != "flat" {
		t.Fatalf("flat text must be used: %q", got)
	}
	emptyPart := domain.NewMessage{Parts: []domain.MessagePart{{Text: ""}}, Text: "flat"}
	if got := messageText(emptyPart); got != "flat" {
		t.Fatalf("empty part must fall back: %q", got)
	}
}
