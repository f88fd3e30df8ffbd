package service

import (
	"context"
	"errors"

	"github.com/agentbridge/gateway/internal/domain"
	"github.com/agentbridge/gateway/internal/store"
)

// SessionTrace is the debug view of a session's event log.
type SessionTrace struct {
	SessionID   string         `json:"sessionId"`
	Trace       []domain.Event `json:"trace"`
	Performance map[string]any `json:"performance"`
	Message     string         `json:"message,omitempty"`
}

// GetSessionTrace derives a trace from the session's events. Placeholder
// ids return an empty trace rather than erroring, mirroring session
// lookup; unknown sessions also degrade to an empty trace.
func (s *Service) GetSessionTrace(ctx context.Context, sessionID string) (*SessionTrace, error) {
	if isPlaceholderID(sessionID) {
		return &SessionTrace{
			SessionID:   sessionID,
			Trace:       []domain.Event{},
			Performance: map[string]any{},
			Message:     "No trace available for undefined session",
		}, nil
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return &SessionTrace{
			SessionID:   sessionID,
			Trace:       []domain.Event{},
			Performance: map[string]any{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	// The trace projection drops the raw agent payload.
	trace := make([]domain.Event, 0, len(session.Events))
	userMessages, agentMessages := 0, 0
	for _, event := range session.Events {
		projected := event
		projected.RawResponse = nil
		trace = append(trace, projected)
		switch event.Role {
		case domain.RoleUser:
			userMessages++
		case domain.RoleAssistant:
			agentMessages++
		}
	}

	return &SessionTrace{
		SessionID: sessionID,
		Trace:     trace,
		Performance: map[string]any{
			"totalEvents":   len(trace),
			"userMessages":  userMessages,
			"agentMessages": agentMessages,
		},
	}, nil
}
