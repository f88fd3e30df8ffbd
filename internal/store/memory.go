package store

import (
	"context"
	"sync"

	"github.com/agentbridge/gateway/internal/domain"
)

// MemoryStore implements Store with mutex-guarded maps. This is the
// default: the target deployment is single-instance with no durability
// goal, so process memory is the source of truth.
//
// Appends from concurrent chat turns are serialized by the store lock, so
// no write is lost; the relative order of appends from two in-flight turns
// still reflects which turn finished its agent call first.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	evalSets  map[string]*domain.EvalSet
	artifacts map[string]*domain.Artifact // key: sessionID + ":" + name
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*domain.Session),
		evalSets:  make(map[string]*domain.EvalSet),
		artifacts: make(map[string]*domain.Artifact),
	}
}

// CreateSession registers a new session record.
func (s *MemoryStore) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	stored.Events = append([]domain.Event(nil), session.Events...)
	stored.State = copyState(session.State)
	if stored.Events == nil {
		stored.Events = []domain.Event{}
	}
	if stored.State == nil {
		stored.State = map[string]any{}
	}
	s.sessions[session.ID] = &stored
	return nil
}

// GetSession returns a copy of the session so callers can serialize it
// without holding the store lock.
func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *session
	out.Events = append([]domain.Event(nil), session.Events...)
	if out.Events == nil {
		out.Events = []domain.Event{}
	}
	out.State = copyState(session.State)
	return &out, nil
}

// ListSessions scans all sessions and filters on both owner fields.
func (s *MemoryStore) ListSessions(ctx context.Context, appName, userID string) ([]domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := []domain.SessionSummary{}
	for _, session := range s.sessions {
		if session.AppName != appName || session.UserID != userID {
			continue
		}
		summaries = append(summaries, domain.SessionSummary{
			ID:         session.ID,
			AppName:    session.AppName,
			UserID:     session.UserID,
			CreatedAt:  session.CreatedAt,
			EventCount: len(session.Events),
		})
	}
	return summaries, nil
}

// DeleteSession removes the session; subsequent gets report not found.
func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// AppendEvent appends one event to the session's log.
func (s *MemoryStore) AppendEvent(ctx context.Context, sessionID string, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Events = append(session.Events, *event)
	return nil
}

// UpdateSessionState replaces the session's state snapshot. Last write
// wins; the snapshot is never merged with the previous one.
func (s *MemoryStore) UpdateSessionState(ctx context.Context, sessionID string, state map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.State = copyState(state)
	return nil
}

// CreateEvalSet registers an eval set.
func (s *MemoryStore) CreateEvalSet(ctx context.Context, set *domain.EvalSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *set
	stored.Cases = append([]domain.EvalCase(nil), set.Cases...)
	if stored.Cases == nil {
		stored.Cases = []domain.EvalCase{}
	}
	s.evalSets[set.ID] = &stored
	return nil
}

// GetEvalSet returns a copy of the eval set.
func (s *MemoryStore) GetEvalSet(ctx context.Context, setID string) (*domain.EvalSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.evalSets[setID]
	if !ok {
		return nil, ErrEvalSetNotFound
	}
	out := *set
	out.Cases = append([]domain.EvalCase(nil), set.Cases...)
	if out.Cases == nil {
		out.Cases = []domain.EvalCase{}
	}
	return &out, nil
}

// ListEvalSets returns summaries of every eval set.
func (s *MemoryStore) ListEvalSets(ctx context.Context) ([]domain.EvalSetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := []domain.EvalSetSummary{}
	for _, set := range s.evalSets {
		summaries = append(summaries, domain.EvalSetSummary{
			ID:        set.ID,
			Name:      set.Name,
			CaseCount: len(set.Cases),
		})
	}
	return summaries, nil
}

// AddEvalCase appends a case to the set in insertion order.
func (s *MemoryStore) AddEvalCase(ctx context.Context, setID string, evalCase *domain.EvalCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.evalSets[setID]
	if !ok {
		return ErrEvalSetNotFound
	}
	set.Cases = append(set.Cases, *evalCase)
	return nil
}

// PutArtifact stores the latest version under sessionID:name.
func (s *MemoryStore) PutArtifact(ctx context.Context, sessionID string, artifact *domain.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *artifact
	s.artifacts[sessionID+":"+artifact.Name] = &stored
	return nil
}

// GetArtifact returns the latest stored version.
func (s *MemoryStore) GetArtifact(ctx context.Context, sessionID, name string) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[sessionID+":"+name]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	out := *artifact
	return &out, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

func copyState(state map[string]any) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}
