// Package identity provides anonymous per-device identity primitives.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/store"
)

const (
	AnonCookieName        = "campus_anon_id"
	SessionHeaderName     = "X-Campus-Session-ID"
	DefaultSessionIDValue = "default"
	anonCookieMaxAge      = 30 * 24 * time.Hour

	// LastSeenRefresh throttles last-seen writes from HTTP traffic.
	LastSeenRefresh = time.Minute
)

type contextKey int

const (
	userIDKey contextKey = iota
	usernameKey
	sessionIDKey
	roleKey
)

var (
	anonIDPattern    = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// UsernameFromContext extracts the username from the request context.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext extracts the tab session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return DefaultSessionIDValue
}

// RoleFromContext returns the role the visitor picked in the shell.
// Visitors without a role, and requests without identity, get RoleOther.
func RoleFromContext(ctx context.Context) domain.Role {
	if v, ok := ctx.Value(roleKey).(domain.Role); ok {
		return domain.ParseRole(string(v))
	}
	return domain.RoleOther
}

// HasRoleInContext reports whether the visitor has chosen a role yet.
func HasRoleInContext(ctx context.Context) bool {
	v, ok := ctx.Value(roleKey).(domain.Role)
	return ok && v != ""
}

// WithIdentity returns ctx carrying the given identity. Used by the
// middleware and by callers that need to act on behalf of a visitor.
func WithIdentity(ctx context.Context, userID, sessionID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, usernameKey, deriveUsername(userID))
	ctx = context.WithValue(ctx, sessionIDKey, sanitizeSessionID(sessionID))
	return context.WithValue(ctx, roleKey, role)
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !sessionIDPattern.MatchString(id) {
		return DefaultSessionIDValue
	}
	return id
}

func deriveUsername(userID string) string {
	if len(userID) > 13 {
		return "guest-" + userID[len(userID)-8:]
	}
	return "guest"
}

func ensureVisitor(ctx context.Context, repo store.Repository, userID string) (*domain.Visitor, error) {
	visitor, err := repo.GetVisitor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if visitor != nil {
		return visitor, nil
	}

	now := time.Now()
	visitor = &domain.Visitor{
		UserID:     userID,
		Username:   deriveUsername(userID),
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.UpsertVisitor(ctx, visitor); err != nil {
		return nil, err
	}
	return visitor, nil
}

// touchVisitor keeps active visitors out of the inactivity sweep. Failures
// are logged and the request proceeds.
func touchVisitor(ctx context.Context, repo store.Repository, visitor *domain.Visitor) {
	now := time.Now()
	if now.Sub(visitor.LastSeenAt) < LastSeenRefresh {
		return
	}
	if err := repo.UpdateLastSeen(ctx, visitor.UserID, now); err != nil {
		slog.Warn("Failed to update last seen", "user_id", visitor.UserID, "error", err)
		return
	}
	visitor.LastSeenAt = now
}

func setAnonCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		setAnonCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonID()
	if err != nil {
		return "", err
	}
	setAnonCookie(w, id, isDev)
	return id, nil
}

func sessionIDFromRequest(r *http.Request) string {
	sid := r.Header.Get(SessionHeaderName)
	if sid == "" {
		sid = r.URL.Query().Get("session_id")
	}
	return sanitizeSessionID(sid)
}

// Middleware injects anonymous per-device identity, the per-request session
// ID and the visitor's role.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := getOrCreateAnonID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish anonymous identity"}`, http.StatusInternalServerError)
				return
			}

			visitor, err := ensureVisitor(r.Context(), repo, userID)
			if err != nil {
				slog.Error("Failed to initialize visitor", "user_id", userID, "error", err)
				http.Error(w, `{"error":"failed to initialize visitor"}`, http.StatusInternalServerError)
				return
			}

			touchVisitor(r.Context(), repo, visitor)

			ctx := WithIdentity(r.Context(), userID, sessionIDFromRequest(r), visitor.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
