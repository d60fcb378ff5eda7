package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/objectkit/internal/auth"
	"github.com/annel0/objectkit/internal/behavior/implementations"
	"github.com/annel0/objectkit/internal/editor"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/storage"
)

func newAuthServer(t *testing.T) *RestServer {
	t.Helper()
	ctx := context.Background()
	p := platform.New("test")
	implementations.RegisterDefaults(p)

	store := storage.NewMemoryStore()
	users := auth.NewStoreUserRepo(store)
	require.NoError(t, users.EnsureUser(ctx, "admin", "admin-password", true))
	require.NoError(t, users.EnsureUser(ctx, "editor", "editor-password", false))

	tokens, err := auth.NewTokenIssuer("", time.Hour)
	require.NoError(t, err)

	webhooks := NewOutboundWebhookManager("test")
	t.Cleanup(webhooks.Close)

	reg := prometheus.NewRegistry()
	return NewRestServer(Config{
		Editor:     editor.NewService(storage.NewProjectRepository(store, p), p),
		Webhooks:   webhooks,
		Auth:       &AuthConfig{Users: users, Tokens: tokens},
		Registerer: reg,
		Gatherer:   reg,
	})
}

func send(t *testing.T, rs *RestServer, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, rs *RestServer, username, password string) string {
	t.Helper()
	w := send(t, rs, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	rs := newAuthServer(t)

	w := send(t, rs, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(t, rs, http.MethodPost, "/api/auth/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(t, rs, http.MethodPost, "/api/auth/login", "", `{"username":"Admin","password":"admin-password"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.True(t, resp.IsAdmin)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestWriteRoutesRequireToken(t *testing.T) {
	rs := newAuthServer(t)

	// чтение без токена
	w := send(t, rs, http.MethodGet, "/api/projects", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(t, rs, http.MethodPut, "/api/projects/game/document", "", heroDoc)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(t, rs, http.MethodPut, "/api/projects/game/document", "garbage", heroDoc)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/game/document", strings.NewReader(heroDoc))
	req.Header.Set("Authorization", "Basic YWRtaW46YWRtaW4=")
	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, rs, "editor", "editor-password")
	w = send(t, rs, http.MethodPut, "/api/projects/game/document", token, heroDoc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(t, rs, http.MethodDelete, "/api/projects/game/objects/Hero/behaviors/Drag", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = send(t, rs, http.MethodDelete, "/api/projects/game/objects/Hero/behaviors/Drag", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhooksRequireAdmin(t *testing.T) {
	rs := newAuthServer(t)

	w := send(t, rs, http.MethodGet, "/api/webhooks", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	editorToken := login(t, rs, "editor", "editor-password")
	w = send(t, rs, http.MethodGet, "/api/webhooks", editorToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := login(t, rs, "admin", "admin-password")
	w = send(t, rs, http.MethodGet, "/api/webhooks", adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
