package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/identity"
	"github.com/ashureev/campus-assist/internal/store"
)

const writeTimeout = 5 * time.Second

// Client frame types.
const (
	frameMessage = "message"
	frameAction  = "action"
	framePing    = "ping"
)

// Server frame types.
const (
	frameTranscript = "transcript"
	frameTyping     = "typing"
	frameReply      = "reply"
	framePong       = "pong"
	frameError      = "error"
)

// clientFrame is a message from the browser.
type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Token   string `json:"token,omitempty"`
}

// serverFrame is a message to the browser.
type serverFrame struct {
	Type   string        `json:"type"`
	Turn   *domain.Turn  `json:"turn,omitempty"`
	Turns  []domain.Turn `json:"turns,omitempty"`
	Intent string        `json:"intent,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// WebSocketHandler serves the chat widget over a WebSocket.
type WebSocketHandler struct {
	svc           *Service
	repo          store.Repository
	limiter       *RateLimiter
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler. repo and limiter may be nil.
func NewWebSocketHandler(svc *Service, repo store.Repository, limiter *RateLimiter, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		repo:          repo,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := keyFromContext(r.Context())
	role := identity.RoleFromContext(r.Context())
	if key.UserID == "" {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	slog.Info("WebSocket connection request", "user_id", key.UserID, "session_id", key.SessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", key.UserID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", key.UserID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A reply this socket left behind the typing indicator is dropped with
	// it. Replies scheduled by other sockets or HTTP calls on the same key are
	// left alone; the transcript lives until the session is discarded.
	conn := &connState{}
	defer func() {
		if conn.cancelReply != nil && conn.cancelReply() {
			slog.Debug("Pending reply discarded on disconnect", "user_id", key.UserID, "session_id", key.SessionID)
		}
	}()

	turns, err := h.svc.Transcript(key)
	if err != nil {
		h.writeError(ws, err)
		return
	}
	if err := h.writeJSON(ws, serverFrame{Type: frameTranscript, Turns: turns}); err != nil {
		slog.Debug("Failed to send transcript", "error", err)
		return
	}

	h.readLoop(ctx, ws, conn, key, role)
	slog.Info("Chat socket ended", "user_id", key.UserID, "session_id", key.SessionID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// connState is owned by the connection's read loop.
type connState struct {
	// cancelReply discards the last reply this socket scheduled. Earlier ones
	// are already visible: scheduling flushes any pending reply.
	cancelReply func() bool
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, conn *connState, key Key, role domain.Role) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed by client", "user_id", key.UserID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", key.UserID)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.writeError(ws, errors.New("invalid frame"))
			continue
		}

		if !h.dispatch(ctx, ws, conn, key, role, frame) {
			return
		}

		h.touch(key.UserID)
	}
}

// dispatch handles one client frame and reports whether the loop should continue.
func (h *WebSocketHandler) dispatch(ctx context.Context, ws *websocket.Conn, conn *connState, key Key, role domain.Role, frame clientFrame) bool {
	switch frame.Type {
	case framePing:
		if err := h.writeJSON(ws, serverFrame{Type: framePong}); err != nil {
			slog.Debug("Failed to send pong", "error", err)
			return false
		}
		return true
	case frameMessage, frameAction:
	default:
		h.writeError(ws, errors.New("unknown frame type"))
		return true
	}

	if h.limiter != nil && !h.limiter.Allow(key.UserID) {
		h.writeError(ws, ErrRateLimited)
		return true
	}

	if frame.Type == frameAction {
		turn, err := h.svc.Action(ctx, key, role, frame.Token)
		if err != nil {
			h.writeError(ws, err)
			return !errors.Is(err, ErrSessionClosed)
		}
		return h.writeJSON(ws, serverFrame{Type: frameReply, Turn: &turn}) == nil
	}

	// typing carries the accepted user turn; the reply frame follows once visible.
	var writeErr error
	_, cancel, err := h.svc.SendAsync(key, role, frame.Content,
		func(reply Reply) {
			writeErr = h.writeJSON(ws, serverFrame{Type: frameTyping, Turn: &reply.User, Intent: reply.Intent})
		},
		func(turn domain.Turn) {
			if err := h.writeJSON(ws, serverFrame{Type: frameReply, Turn: &turn}); err != nil {
				slog.Debug("Failed to deliver reply", "error", err, "user_id", key.UserID)
			}
		})
	if err != nil {
		h.writeError(ws, err)
		return !errors.Is(err, ErrSessionClosed)
	}
	conn.cancelReply = cancel
	return writeErr == nil
}

// touch updates last seen asynchronously with timeout.
func (h *WebSocketHandler) touch(userID string) {
	if h.repo == nil {
		return
	}
	go func() {
		updateCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := h.repo.UpdateLastSeen(updateCtx, userID, time.Now()); err != nil {
			slog.Warn("Failed to update last seen", "error", err)
		}
	}()
}

func (h *WebSocketHandler) writeError(ws *websocket.Conn, err error) {
	if werr := h.writeJSON(ws, serverFrame{Type: frameError, Error: err.Error()}); werr != nil {
		slog.Debug("Failed to send error frame", "error", werr)
	}
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
