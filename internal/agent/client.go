// Package agent provides the HTTP client for the remote agent endpoint and
// the response-shape normalization applied to whatever it returns.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentbridge/gateway/internal/domain"
)

// ErrEmptyURL is returned when an empty agent URL replacement is attempted.
var ErrEmptyURL = errors.New("agent url must not be empty")

// TransportError describes a failed call to the remote agent: either a
// non-200 response (Status and Body set) or a network-level failure
// (Cause set).
type TransportError struct {
	Status int
	Body   string
	Cause  error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent request failed: %v", e.Cause)
	}
	return fmt.Sprintf("agent returned HTTP %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Client posts envelopes to the remote agent. The target URL is mutable
// process-wide configuration guarded by the client's lock.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client

	probeTimeout time.Duration
	chatTimeout  time.Duration
}

// NewClient creates a client pointed at baseURL.
func NewClient(baseURL string, probeTimeout, chatTimeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		probeTimeout: probeTimeout,
		chatTimeout:  chatTimeout,
	}
}

// URL returns the current remote agent URL.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetURL replaces the remote agent URL. The only validation is that the
// replacement is non-empty.
func (c *Client) SetURL(u string) error {
	if u == "" {
		return ErrEmptyURL
	}
	c.mu.Lock()
	c.baseURL = u
	c.mu.Unlock()
	return nil
}

// Send forwards one chat turn to the remote agent and returns the decoded
// JSON body verbatim. Empty userText falls back to "Hello" so the envelope
// always carries a text part.
func (c *Client) Send(ctx context.Context, sessionID, appName, userID, userText string) (any, error) {
	if userText == "" {
		userText = "Hello"
	}
	messageID := "msg-" + uuid.New().String()
	envelope := &domain.AgentEnvelope{
		ID: "msg-" + uuid.New().String(),
		Params: domain.EnvelopeParams{
			Message: domain.EnvelopeMessage{
				MessageID: messageID,
				Role:      domain.RoleUser,
				Parts:     []domain.MessagePart{{Type: "text", Text: userText}},
				ContextID: "context-" + sessionID,
				SessionID: sessionID,
			},
			SessionID: sessionID,
			AppName:   appName,
			UserID:    userID,
		},
	}
	return c.post(ctx, envelope, c.chatTimeout)
}

// Probe sends the fixed connectivity-check envelope with the shorter probe
// timeout. Returns the envelope that was sent alongside the response so
// the caller can report both.
func (c *Client) Probe(ctx context.Context, text string) (*domain.AgentEnvelope, any, error) {
	if text == "" {
		text = "Hello, can you hear me?"
	}
	envelope := &domain.AgentEnvelope{
		ID: "msg-test-connection",
		Params: domain.EnvelopeParams{
			Message: domain.EnvelopeMessage{
				MessageID: "msg-test-connection",
				Role:      domain.RoleUser,
				Parts:     []domain.MessagePart{{Type: "text", Text: text}},
				ContextID: "context-test",
			},
		},
	}
	resp, err := c.post(ctx, envelope, c.probeTimeout)
	return envelope, resp, err
}

func (c *Client) post(ctx context.Context, envelope *domain.AgentEnvelope, timeout time.Duration) (any, error) {
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}

	// No schema validation: the body is passed through as decoded JSON.
	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("invalid JSON from agent: %w", err)}
	}
	return decoded, nil
}
