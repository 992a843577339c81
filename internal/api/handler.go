// Package api provides HTTP handlers for the campus API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/config"
	"github.com/ashureev/campus-assist/internal/store"
)

// SessionCounter reports the number of open chat sessions.
type SessionCounter interface {
	Count() int
}

// Handler provides common handler utilities.
type Handler struct {
	repo     store.Repository
	catalog  *catalog.Catalog
	sessions SessionCounter
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies. sessions and
// cfg may be nil.
func NewHandler(repo store.Repository, cat *catalog.Catalog, sessions SessionCounter, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		catalog:  cat,
		sessions: sessions,
		cfg:      cfg,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
