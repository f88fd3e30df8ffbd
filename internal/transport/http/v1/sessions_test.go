package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	c, rec := newContext(http.MethodPost, "/apps/sample-app/users/alice/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")

	require.NoError(t, h.CreateSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "created", body["status"])
	assert.NotEmpty(t, body["sessionId"])
}

func TestCreateSessionHandlerImportsEvents(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	payload := `{"events":[{"id":"e1","type":"user_message","role":"user","content":{"text":"hi"},"timestamp":"2026-01-02T15:04:05Z"}]}`
	c, rec := newContext(http.MethodPost, "/apps/sample-app/users/alice/sessions", payload)
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")

	require.NoError(t, h.CreateSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "imported", body["status"])
	sessionID, _ := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	// The imported conversation is retrievable under the minted id.
	c, rec = newContext(http.MethodGet, "/apps/sample-app/users/alice/sessions/"+sessionID, "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "alice", sessionID)

	require.NoError(t, h.GetSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody(t, rec)
	events, _ := session["events"].([]any)
	assert.Len(t, events, 1)
}

func TestListSessionsHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	c, _ := newContext(http.MethodPost, "/apps/sample-app/users/alice/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")
	require.NoError(t, h.CreateSession(c))

	c, rec := newContext(http.MethodGet, "/apps/sample-app/users/alice/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")

	require.NoError(t, h.ListSessions(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	sessions, _ := body["sessions"].([]any)
	assert.Len(t, sessions, 1)

	// Another user sees nothing.
	c, rec = newContext(http.MethodGet, "/apps/sample-app/users/bob/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "bob")

	require.NoError(t, h.ListSessions(c))
	body = decodeBody(t, rec)
	sessions, _ = body["sessions"].([]any)
	assert.Empty(t, sessions)
}

func TestGetSessionHandlerErrors(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	c, _ := newContext(http.MethodPost, "/apps/sample-app/users/alice/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")
	require.NoError(t, h.CreateSession(c))

	var created string
	{
		c, rec := newContext(http.MethodGet, "/apps/sample-app/users/alice/sessions", "")
		c.SetParamNames("app_name", "user_id")
		c.SetParamValues("sample-app", "alice")
		require.NoError(t, h.ListSessions(c))
		sessions := decodeBody(t, rec)["sessions"].([]any)
		created = sessions[0].(map[string]any)["id"].(string)
	}

	// Unknown id is a 404.
	c, rec := newContext(http.MethodGet, "/apps/sample-app/users/alice/sessions/missing", "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "alice", "missing")
	require.NoError(t, h.GetSession(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session not found", decodeBody(t, rec)["error"])

	// Another user's lookup of a real session is a 403, not a 404.
	c, rec = newContext(http.MethodGet, "/apps/sample-app/users/bob/sessions/"+created, "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "bob", created)
	require.NoError(t, h.GetSession(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decodeBody(t, rec)["error"])
}

func TestGetSessionHandlerPlaceholderID(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	c, rec := newContext(http.MethodGet, "/apps/sample-app/users/alice/sessions/undefined", "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "alice", "undefined")

	require.NoError(t, h.GetSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.NotEqual(t, "undefined", body["id"])
}

func TestDeleteSessionHandler(t *testing.T) {
	h := newTestHandler(t, "http://unused")

	c, rec := newContext(http.MethodPost, "/apps/sample-app/users/alice/sessions", "")
	c.SetParamNames("app_name", "user_id")
	c.SetParamValues("sample-app", "alice")
	require.NoError(t, h.CreateSession(c))
	sessionID := decodeBody(t, rec)["sessionId"].(string)

	c, rec = newContext(http.MethodDelete, "/apps/sample-app/users/alice/sessions/"+sessionID, "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "alice", sessionID)
	require.NoError(t, h.DeleteSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", decodeBody(t, rec)["status"])

	c, rec = newContext(http.MethodDelete, "/apps/sample-app/users/alice/sessions/"+sessionID, "")
	c.SetParamNames("app_name", "user_id", "session_id")
	c.SetParamValues("sample-app", "alice", sessionID)
	require.NoError(t, h.DeleteSession(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
