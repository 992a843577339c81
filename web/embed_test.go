package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	SPAHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSPAHandler_ServesShell(t *testing.T) {
	for _, path := range []string{"/", "/dashboard/student", "/map"} {
		rec := get(t, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Campus Assistant") {
			t.Errorf("%s: expected the campus shell", path)
		}
	}
}

func TestSPAHandler_StaticAsset(t *testing.T) {
	rec := get(t, "/app.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/chat/messages") {
		t.Error("expected the chat widget script")
	}
}

func TestSPAHandler_UnknownAPIPath(t *testing.T) {
	rec := get(t, "/api/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
}
