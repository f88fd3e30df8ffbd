package service

import (
	"context"
	"testing"
	"time"

	"github.com/agentbridge/gateway/internal/agent"
	"github.com/agentbridge/gateway/internal/config"
	"github.com/agentbridge/gateway/internal/domain"
	"github.com/agentbridge/gateway/internal/policy"
	"github.com/agentbridge/gateway/internal/store"
)

func newTestService(t *testing.T, agentURL string) *Service {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}
	cfg := &config.Config{
		Apps: []string{"sample-app", "demo-agent", "test-application"},
	}
	client := agent.NewClient(agentURL, 2*time.Second, 2*time.Second)
	return New(store.NewMemoryStore(), client, engine, cfg)
}

func TestCreateSessionMintsID(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "sample-app", "alice")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	if session.Events == nil || session.State == nil {
		t.Fatal("events and state must be initialized")
	}

	got, err := svc.GetSession(ctx, session.ID, "sample-app", "alice")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("round trip mismatch: %s != %s", got.ID, session.ID)
	}
}

func TestGetSessionPlaceholderCreatesFresh(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	for _, id := range []string{"", "undefined", "null"} {
		session, err := svc.GetSession(ctx, id, "sample-app", "alice")
		if err != nil {
			t.Fatalf("GetSession(%q) failed: %v", id, err)
		}
		if isPlaceholderID(session.ID) {
			t.Fatalf("placeholder id %q must synthesize a real session, got %q", id, session.ID)
		}
	}
}

func TestGetSessionEnforcesOwnership(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "sample-app", "alice")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := svc.GetSession(ctx, session.ID, "sample-app", "bob"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for wrong user, got %v", err)
	}
	if _, err := svc.GetSession(ctx, session.ID, "other-app", "alice"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for wrong app, got %v", err)
	}
	if _, err := svc.GetSession(ctx, "does-not-exist", "sample-app", "alice"); err != store.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSessionEnforcesOwnership(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, "sample-app", "alice")

	if err := svc.DeleteSession(ctx, session.ID, "sample-app", "bob"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// The denied delete must not remove the session.
	if _, err := svc.GetSession(ctx, session.ID, "sample-app", "alice"); err != nil {
		t.Fatalf("session should survive a denied delete: %v", err)
	}

	if err := svc.DeleteSession(ctx, session.ID, "sample-app", "alice"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, session.ID, "sample-app", "alice"); err != store.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestGetOrCreateSessionAdoptsUnknownID(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	session, err := svc.GetOrCreateSession(ctx, "caller-chosen-id", "sample-app", "alice")
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if session.ID != "caller-chosen-id" {
		t.Fatalf("unknown id must be adopted, got %q", session.ID)
	}

	again, err := svc.GetOrCreateSession(ctx, "caller-chosen-id", "sample-app", "alice")
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if again.ID != session.ID {
		t.Fatal("second resolution must return the existing session")
	}
}

func TestImportSessionMintsFreshID(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	events := []domain.Event{
		{ID: "e1", Timestamp: time.Now(), Type: domain.EventTypeUserMessage, Role: domain.RoleUser, Content: map[string]any{"text": "hi"}},
		{ID: "e2", Timestamp: time.Now(), Type: domain.EventTypeAgentResponse, Role: domain.RoleAssistant, Content: map[string]any{"text": "hello"}},
	}
	session, err := svc.ImportSession(ctx, "sample-app", "alice", events)
	if err != nil {
		t.Fatalf("ImportSession failed: %v", err)
	}
	if session.ID == "" || session.ID == "e1" {
		t.Fatalf("expected fresh session id, got %q", session.ID)
	}

	got, err := svc.GetSession(ctx, session.ID, "sample-app", "alice")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Events) != 2 || got.Events[0].ID != "e1" {
		t.Fatalf("imported events lost: %+v", got.Events)
	}
}

func TestListSessionsSummaries(t *testing.T) {
	svc := newTestService(t, "http://unused")
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx, "sample-app", "alice")
	svc.CreateSession(ctx, "sample-app", "bob")

	summaries, err := svc.ListSessions(ctx, "sample-app", "alice")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != first.ID || summaries[0].EventCount != 0 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}
