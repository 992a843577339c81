package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/campus-assist/internal/api"
	"github.com/ashureev/campus-assist/internal/identity"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (64KB).
const defaultMaxRequestBodySize = 64 << 10

// MessageRequest is the body of POST /api/chat/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// ActionRequest is the body of POST /api/chat/actions.
type ActionRequest struct {
	Token string `json:"token"`
}

// Handler handles chat HTTP requests.
type Handler struct {
	svc         *Service
	limiter     *RateLimiter
	maxBodySize int64
}

// NewHandler creates a chat handler. A nil limiter disables rate limiting.
func NewHandler(svc *Service, limiter *RateLimiter, maxBodySize int64) *Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &Handler{svc: svc, limiter: limiter, maxBodySize: maxBodySize}
}

// RegisterRoutes registers chat routes (requires identity middleware).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/messages", h.HandleMessage)
		r.Post("/actions", h.HandleAction)
		r.Get("/transcript", h.HandleTranscript)
		r.Delete("/session", h.HandleDiscard)
	})
}

func keyFromContext(ctx context.Context) Key {
	return Key{
		UserID:    identity.UserIDFromContext(ctx),
		SessionID: identity.SessionIDFromContext(ctx),
	}
}

func (h *Handler) allow(userID string) bool {
	return h.limiter == nil || h.limiter.Allow(userID)
}

// decode reads a bounded JSON body into v and writes the error response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// HandleMessage handles POST /api/chat/messages. It responds once the reply
// is visible.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())
	if key.UserID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.allow(key.UserID) {
		writeServiceError(w, ErrRateLimited)
		return
	}

	var req MessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := h.svc.Send(r.Context(), key, identity.RoleFromContext(r.Context()), req.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("Client left before reply", "user_id", key.UserID, "request_id", chiMiddleware.GetReqID(r.Context()))
			return
		}
		writeServiceError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, reply)
}

// HandleAction handles POST /api/chat/actions.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())
	if key.UserID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.allow(key.UserID) {
		writeServiceError(w, ErrRateLimited)
		return
	}

	var req ActionRequest
	if !h.decode(w, r, &req) {
		return
	}

	turn, err := h.svc.Action(r.Context(), key, identity.RoleFromContext(r.Context()), req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"turn": turn})
}

// HandleTranscript handles GET /api/chat/transcript.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())
	if key.UserID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	turns, err := h.svc.Transcript(key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// HandleDiscard handles DELETE /api/chat/session.
func (h *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())
	if key.UserID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.svc.Discard(key)
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRateLimited):
		api.Error(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrSessionClosed):
		api.Error(w, http.StatusGone, err.Error())
	case errors.Is(err, ErrReplyDiscarded):
		api.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		api.Error(w, http.StatusGatewayTimeout, "reply timed out")
	default:
		slog.Error("Chat request failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}
