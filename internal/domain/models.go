// Package domain defines the core domain models for the gateway.
package domain

import "time"

// EventType represents the kind of a session event.
type EventType string

const (
	EventTypeUserMessage   EventType = "user_message"
	EventTypeAgentResponse EventType = "agent_response"
)

// Roles recorded on session events.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents one user/app conversation and its event history.
type Session struct {
	ID        string         `json:"id"`
	AppName   string         `json:"appName"`
	UserID    string         `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	Events    []Event        `json:"events"`
	State     map[string]any `json:"state"`
}

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	ID         string    `json:"id"`
	AppName    string    `json:"appName"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	EventCount int       `json:"eventCount"`
}

// Event is one immutable turn appended to a session's log.
// RawResponse is only set for agent_response events and retains the
// unprocessed remote-agent payload for diagnostics.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Role        string    `json:"role"`
	Content     any       `json:"content"`
	SessionID   string    `json:"sessionId"`
	RawResponse any       `json:"rawResponse,omitempty"`
}

// MessagePart is a single part of a message; this gateway only ever
// populates text parts.
type MessagePart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// NewMessage is the inbound message shape accepted from the frontend.
// Either Parts or Text is populated.
type NewMessage struct {
	Parts []MessagePart `json:"parts,omitempty"`
	Text  string        `json:"text,omitempty"`
}

// AgentRunRequest is a chat submission from the frontend.
type AgentRunRequest struct {
	AppName             string     `json:"appName"`
	UserID              string     `json:"userId"`
	SessionID           string     `json:"sessionId"`
	NewMessage          NewMessage `json:"newMessage"`
	FunctionCallEventID string     `json:"functionCallEventId,omitempty"`
	Streaming           *bool      `json:"streaming,omitempty"`
	StateDelta          any        `json:"stateDelta,omitempty"`
}

// FrameContent is the content carried by a stream frame.
type FrameContent struct {
	Parts []MessagePart `json:"parts"`
}

// StreamFrame is one server-push frame on the chat stream; the frontend
// reads chunkJson.content.parts[].text.
type StreamFrame struct {
	ID      string       `json:"id"`
	Author  string       `json:"author"`
	Content FrameContent `json:"content"`
}

// EvalCase is one stored conversation test case. Cases exist only inside
// an EvalSet.
type EvalCase struct {
	ID                string         `json:"id"`
	Conversation      []Event        `json:"conversation"`
	SessionInput      map[string]any `json:"sessionInput"`
	CreationTimestamp time.Time      `json:"creationTimestamp"`
}

// EvalSet groups eval cases in insertion order.
type EvalSet struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Cases []EvalCase `json:"cases"`
}

// EvalSetSummary is the list-view projection of an eval set.
type EvalSetSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CaseCount int    `json:"caseCount"`
}

// Artifact is a named payload attached to a session. Only the latest
// version is retained in the store.
type Artifact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   any       `json:"content"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}
