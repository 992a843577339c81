package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/dashboard"
	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/identity"
	"github.com/ashureev/campus-assist/internal/store"
)

const maxRoleBodySize = 1 << 10

// CampusHandler serves the visitor, catalog, map and dashboard endpoints.
type CampusHandler struct {
	*Handler
}

// NewCampusHandler creates a new campus handler.
func NewCampusHandler(base *Handler) *CampusHandler {
	return &CampusHandler{Handler: base}
}

// RegisterRoutes registers campus routes.
func (h *CampusHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Get("/config", h.GetConfig)
		r.Put("/role", h.PutRole)
		r.Get("/catalog/search", h.SearchCatalog)
		r.Get("/catalog/entries/{id}", h.GetEntry)
		r.Get("/map/buildings", h.ListBuildings)
		r.Get("/map/buildings/{id}", h.GetBuilding)
		r.Get("/events", h.ListEvents)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/dashboard/{role}", h.GetDashboard)
	})
}

// GetMe returns the current visitor's information.
func (h *CampusHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	visitor, err := h.repo.GetVisitor(r.Context(), userID)
	if err != nil || visitor == nil {
		Error(w, http.StatusUnauthorized, "visitor not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    visitor.UserID,
		"username":   visitor.Username,
		"role":       domain.ParseRole(string(visitor.Role)),
		"has_role":   visitor.HasRole(),
		"session_id": identity.SessionIDFromContext(r.Context()),
	})
}

// GetConfig returns the settings the front-end needs.
func (h *CampusHandler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]interface{}{
		"roles":       domain.Roles,
		"max_results": catalog.MaxResults,
	}
	if h.cfg != nil {
		resp["max_message_length"] = h.cfg.Chat.MaxMessageLength
	}
	JSON(w, http.StatusOK, resp)
}

// RoleRequest is the body of PUT /api/role.
type RoleRequest struct {
	Role string `json:"role"`
}

// PutRole stores the role picked in the shell. Unknown roles are rejected
// here; the chat path itself degrades them to "other".
func (h *CampusHandler) PutRole(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RoleRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRoleBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		Error(w, http.StatusBadRequest, "role must be one of student, visitor, admin, other")
		return
	}

	if err := h.repo.UpdateRole(r.Context(), userID, role); err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			Error(w, http.StatusUnauthorized, "visitor not found")
			return
		}
		slog.Error("Failed to update role", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	slog.Info("Visitor role selected", "user_id", userID, "role", role)
	JSON(w, http.StatusOK, map[string]interface{}{"role": role})
}

// SearchCatalog handles GET /api/catalog/search?q=.
func (h *CampusHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := h.catalog.Search(q)
	if results == nil {
		results = []domain.ScoredEntry{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": results,
	})
}

// GetEntry handles GET /api/catalog/entries/{id}.
func (h *CampusHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.catalog.Entry(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "entry not found")
		return
	}
	JSON(w, http.StatusOK, entry)
}

// ListBuildings handles GET /api/map/buildings?q=.
func (h *CampusHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"buildings": h.catalog.Buildings(r.URL.Query().Get("q")),
	})
}

// GetBuilding handles GET /api/map/buildings/{id}.
func (h *CampusHandler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	b, ok := h.catalog.Building(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "building not found")
		return
	}
	JSON(w, http.StatusOK, b)
}

// ListEvents returns the events shown to the caller's role.
func (h *CampusHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := h.catalog.Events(identity.RoleFromContext(r.Context()))
	if events == nil {
		events = []domain.Event{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetDashboard returns the dashboard for the role in the path, or the
// caller's role when none is given.
func (h *CampusHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	role := identity.RoleFromContext(r.Context())
	if raw := chi.URLParam(r, "role"); raw != "" {
		role = domain.Role(strings.ToLower(raw))
		if !role.Valid() {
			Error(w, http.StatusNotFound, "unknown role")
			return
		}
	}

	var stats dashboard.Stats
	if role == domain.RoleAdmin {
		intents, err := h.repo.IntentStats(r.Context())
		if err != nil {
			slog.Error("Failed to load intent stats", "error", err)
			Error(w, http.StatusInternalServerError, "failed to load metrics")
			return
		}
		stats.Intents = intents
		if h.sessions != nil {
			stats.ActiveSessions = h.sessions.Count()
		}
	}

	d, err := dashboard.Build(role, stats)
	if err != nil {
		slog.Error("Failed to build dashboard", "role", role, "error", err)
		Error(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	JSON(w, http.StatusOK, d)
}
