package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/agentbridge/gateway/internal/agent"
	"github.com/agentbridge/gateway/internal/domain"
)

// lastResponseLimit is how much of the agent's reply the state snapshot
// keeps before truncating.
const lastResponseLimit = 100

// RunTurn runs one chat turn end to end and always returns a frame: a
// failed agent call degrades to a human-readable error frame so the
// caller's stream never terminates abnormally mid-turn.
func (s *Service) RunTurn(ctx context.Context, req *domain.AgentRunRequest) *domain.StreamFrame {
	session, err := s.GetOrCreateSession(ctx, req.SessionID, req.AppName, req.UserID)
	if err != nil {
		log.Printf("ERROR: failed to resolve session %q: %v", req.SessionID, err)
		return errorFrame("Unexpected error: " + err.Error())
	}

	s.appendUserEvent(ctx, session.ID, req.NewMessage)

	raw, err := s.agent.Send(ctx, session.ID, req.AppName, req.UserID, messageText(req.NewMessage))
	if err != nil {
		return s.transportErrorFrame(err)
	}

	text := agent.ExtractText(raw)
	frame := &domain.StreamFrame{
		ID:     uuid.New().String(),
		Author: "model",
		Content: domain.FrameContent{
			Parts: []domain.MessagePart{{Text: text}},
		},
	}
	s.appendAgentEvent(ctx, session.ID, frame.Content, raw, text)
	return frame
}

// appendUserEvent records the inbound turn.
func (s *Service) appendUserEvent(ctx context.Context, sessionID string, message domain.NewMessage) {
	event := &domain.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      domain.EventTypeUserMessage,
		Role:      domain.RoleUser,
		Content:   message,
		SessionID: sessionID,
	}
	if err := s.store.AppendEvent(ctx, sessionID, event); err != nil {
		log.Printf("WARN: failed to append user event to session %s: %v", sessionID, err)
	}
}

// appendAgentEvent records the outbound turn, retaining the raw remote
// payload for diagnostics, then replaces the session's state snapshot.
func (s *Service) appendAgentEvent(ctx context.Context, sessionID string, content domain.FrameContent, raw any, text string) {
	event := &domain.Event{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Type:        domain.EventTypeAgentResponse,
		Role:        domain.RoleAssistant,
		Content:     content,
		SessionID:   sessionID,
		RawResponse: raw,
	}
	if err := s.store.AppendEvent(ctx, sessionID, event); err != nil {
		log.Printf("WARN: failed to append agent event to session %s: %v", sessionID, err)
		return
	}

	messageCount := 0
	if session, err := s.store.GetSession(ctx, sessionID); err == nil {
		messageCount = len(session.Events)
	}
	state := map[string]any{
		"lastActivity":      time.Now().Format(time.RFC3339Nano),
		"messageCount":      messageCount,
		"lastAgentResponse": truncateResponse(text),
	}
	if err := s.store.UpdateSessionState(ctx, sessionID, state); err != nil {
		log.Printf("WARN: failed to update state for session %s: %v", sessionID, err)
	}
}

// transportErrorFrame converts an agent transport failure into a
// best-effort frame. No agent event is appended for a failed call.
func (s *Service) transportErrorFrame(err error) *domain.StreamFrame {
	log.Printf("ERROR: remote agent call failed: %v", err)
	var te *agent.TransportError
	if errors.As(err, &te) && te.Cause == nil {
		return errorFrame(transportStatusText(te))
	}
	return errorFrame("Could not connect to remote agent. Please check that the agent is running.")
}

func transportStatusText(te *agent.TransportError) string {
	return "Agent error: " + strconv.Itoa(te.Status)
}

func errorFrame(text string) *domain.StreamFrame {
	return &domain.StreamFrame{
		ID:     uuid.New().String(),
		Author: "model",
		Content: domain.FrameContent{
			Parts: []domain.MessagePart{{Text: text}},
		},
	}
}

// messageText picks the outbound text: first part's text, else the flat
// text field. The client substitutes "Hello" when both are empty.
func messageText(message domain.NewMessage) string {
	if len(message.Parts) > 0 && message.Parts[0].Text != "" {
		return message.Parts[0].Text
	}
	return message.Text
}

// truncateResponse caps the stored reply at lastResponseLimit characters
// with a trailing ellipsis marker.
func truncateResponse(text string) string {
	runes := []rune(text)
	if len(runes) <= lastResponseLimit {
		return text
	}
	return string(runes[:lastResponseLimit]) + "..."
}
