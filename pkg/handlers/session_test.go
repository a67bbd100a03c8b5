package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/middleware"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
)

func TestSessionHandler_LoginSuccess(t *testing.T) {
	svc := &mockLexiconService{login: &models.LoginResult{Success: true, Token: "tok", User: "root@example.com"}}

	rec := serve(t, svc, http.MethodPost, "/api/login", `{"email":"root@example.com","password":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.LoginResult
	resp := decodeData(t, rec, &result)
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", result.Token)
}

func TestSessionHandler_LoginRejected(t *testing.T) {
	svc := &mockLexiconService{login: &models.LoginResult{Success: false, Token: "Invalid credentials", User: "-"}}

	rec := serve(t, svc, http.MethodPost, "/api/login", `{"email":"x","password":"y"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.LoginResult
	resp := decodeData(t, rec, &result)
	assert.False(t, resp.Success)
	assert.Equal(t, "login_failed", resp.Error)
	assert.Equal(t, "-", result.User)
}

func TestSessionHandler_LoginErrors(t *testing.T) {
	rec := serve(t, &mockLexiconService{}, http.MethodPost, "/api/login", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &mockLexiconService{err: apperrors.ErrInvalidArgument}, http.MethodPost, "/api/login", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Logout(t *testing.T) {
	svc := &mockLexiconService{logout: &models.LogoutResult{Success: false, Message: "boom"}}

	rec := serve(t, svc, http.MethodPost, "/api/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.LogoutResult
	resp := decodeData(t, rec, &result)
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", result.Message)
}

func TestSessionHandler_Status(t *testing.T) {
	session := newMockSession()
	session.status = models.SessionStatus{LoggedIn: true, User: "root@example.com"}
	svc := &mockLexiconService{session: session}

	rec := serve(t, svc, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SessionStatus
	decodeData(t, rec, &status)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "root@example.com", status.User)
}

// readEvent reads one server-sent event and decodes its data.
func readEvent(t *testing.T, r *bufio.Reader) models.SessionStatus {
	t.Helper()
	var status models.SessionStatus
	var sawEvent bool
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "event: session":
			sawEvent = true
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &status))
		case line == "" && sawEvent:
			return status
		}
	}
}

func TestSessionHandler_Events(t *testing.T) {
	session := newMockSession()
	svc := &mockLexiconService{session: session}

	mux := http.NewServeMux()
	NewSessionHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	// The logging middleware sits in front of the stream in production.
	server := httptest.NewServer(middleware.RequestLogger(zap.NewNop())(mux))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/session/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.False(t, readEvent(t, reader).LoggedIn, "current status is replayed")

	session.publish(models.SessionStatus{LoggedIn: true, User: "root@example.com"})
	status := readEvent(t, reader)
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "root@example.com", status.User)

	cancel()
	require.Eventually(t, func() bool { return session.subscribers() == 0 }, 2*time.Second, 10*time.Millisecond,
		"disconnecting drops the subscription")
}
