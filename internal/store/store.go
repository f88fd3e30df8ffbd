// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"errors"

	"github.com/agentbridge/gateway/internal/domain"
)

// Sentinel errors shared by all implementations.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrEvalSetNotFound  = errors.New("eval set not found")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Store defines the interface for gateway state. The store is the only
// writer of session records; ownership checks live above it.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, appName, userID string) ([]domain.SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Event log operations. Events are append-only and immutable once
	// appended; the state snapshot is fully replaced on every update.
	AppendEvent(ctx context.Context, sessionID string, event *domain.Event) error
	UpdateSessionState(ctx context.Context, sessionID string, state map[string]any) error

	// Eval set operations. There is no deletion path.
	CreateEvalSet(ctx context.Context, set *domain.EvalSet) error
	GetEvalSet(ctx context.Context, setID string) (*domain.EvalSet, error)
	ListEvalSets(ctx context.Context) ([]domain.EvalSetSummary, error)
	AddEvalCase(ctx context.Context, setID string, evalCase *domain.EvalCase) error

	// Artifact operations, keyed by session id + name; only the latest
	// version is retained.
	PutArtifact(ctx context.Context, sessionID string, artifact *domain.Artifact) error
	GetArtifact(ctx context.Context, sessionID, name string) (*domain.Artifact, error)

	// Lifecycle
	Close() error
}
