package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agentbridge/gateway/internal/domain"
)

// isPlaceholderID reports whether the caller supplied a sentinel meaning
// "no session yet". Frontends that have not obtained a real id send the
// literal strings their runtime produced for null/undefined.
func isPlaceholderID(id string) bool {
	switch id {
	case "", "undefined", "null":
		return true
	}
	return false
}

// CreateSession creates a fresh session for the given owner.
func (s *Service) CreateSession(ctx context.Context, appName, userID string) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New().String(),
		AppName:   appName,
		UserID:    userID,
		CreatedAt: time.Now(),
		Events:    []domain.Event{},
		State:     map[string]any{},
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("Created session %s for user %s in app %s", session.ID, userID, appName)
	return session, nil
}

// GetOrCreateSession resolves the session for a chat turn. Placeholder ids
// synthesize a brand-new session rather than acting as lookup keys, and an
// unknown id is created silently under the id the caller supplied.
func (s *Service) GetOrCreateSession(ctx context.Context, sessionID, appName, userID string) (*domain.Session, error) {
	if isPlaceholderID(sessionID) {
		return s.CreateSession(ctx, appName, userID)
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	session = &domain.Session{
		ID:        sessionID,
		AppName:   appName,
		UserID:    userID,
		CreatedAt: time.Now(),
		Events:    []domain.Event{},
		State:     map[string]any{},
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("Created new session %s during message processing", sessionID)
	return session, nil
}

// GetSession fetches a session, enforcing ownership. A placeholder id
// yields a freshly created session instead of a lookup.
func (s *Service) GetSession(ctx context.Context, sessionID, appName, userID string) (*domain.Session, error) {
	if isPlaceholderID(sessionID) {
		return s.CreateSession(ctx, appName, userID)
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, appName, userID, session.AppName, session.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns summaries of the sessions owned by (app, user).
func (s *Service) ListSessions(ctx context.Context, appName, userID string) ([]domain.SessionSummary, error) {
	return s.store.ListSessions(ctx, appName, userID)
}

// DeleteSession removes a session after the ownership check.
func (s *Service) DeleteSession(ctx context.Context, sessionID, appName, userID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, appName, userID, session.AppName, session.UserID); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("Deleted session %s", sessionID)
	return nil
}

// ImportSession creates a session preloaded with the supplied events. The
// caller's session id, if any, is never reused; a fresh id is minted.
func (s *Service) ImportSession(ctx context.Context, appName, userID string, events []domain.Event) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New().String(),
		AppName:   appName,
		UserID:    userID,
		CreatedAt: time.Now(),
		Events:    events,
		State:     map[string]any{},
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to import session: %w", err)
	}
	return session, nil
}
