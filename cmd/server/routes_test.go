package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/chat"
	"github.com/ashureev/campus-assist/internal/config"
	"github.com/ashureev/campus-assist/internal/identity"
	"github.com/ashureev/campus-assist/internal/intent"
	"github.com/ashureev/campus-assist/internal/store"
)

func testRouter(t *testing.T, repo store.Repository) http.Handler {
	t.Helper()
	sessions := chat.NewSessionManager()
	svc := chat.NewService(intent.NewDefault(), sessions, chat.ServiceConfig{Delayer: chat.NoDelay})
	t.Cleanup(svc.Close)

	return newRouter(routerDeps{
		cfg:      &config.Config{Chat: config.ChatConfig{MaxRequestBodySize: 1024}},
		repo:     repo,
		catalog:  catalog.MustDefault(),
		sessions: sessions,
		chat:     svc,
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_HealthReportsUnreachableDatabase(t *testing.T) {
	repo, err := store.NewSQLite(store.MemoryPath)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	h := testRouter(t, repo)

	rec := get(h, "/api/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "unreachable", body["database"])

	// Identity-scoped routes still need the store.
	require.Equal(t, http.StatusInternalServerError, get(h, "/api/me").Code)
}

func TestRouter_HealthSkipsIdentity(t *testing.T) {
	repo, err := store.NewSQLite(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	h := testRouter(t, repo)

	rec := get(h, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies(), "health checks must not mint visitors")

	rec = get(h, "/api/me")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, identity.AnonCookieName, cookies[0].Name)

	require.Equal(t, http.StatusOK, get(h, "/health").Code)
}
