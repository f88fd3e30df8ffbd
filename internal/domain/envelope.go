package domain

// AgentEnvelope is the fixed request shape sent to the remote agent.
// Session id, app name and user id are duplicated at the params level
// because observed agents read them from either place.
type AgentEnvelope struct {
	ID     string         `json:"id"`
	Params EnvelopeParams `json:"params"`
}

// EnvelopeParams carries the message plus routing fields.
type EnvelopeParams struct {
	Message   EnvelopeMessage `json:"message"`
	SessionID string          `json:"sessionId,omitempty"`
	AppName   string          `json:"appName,omitempty"`
	UserID    string          `json:"userId,omitempty"`
}

// EnvelopeMessage is the message inside an agent envelope. Only the first
// text part is ever populated on the outbound side.
type EnvelopeMessage struct {
	MessageID string        `json:"messageId"`
	Role      string        `json:"role"`
	Parts     []MessagePart `json:"parts"`
	ContextID string        `json:"contextId"`
	SessionID string        `json:"sessionId,omitempty"`
}
