// Package domain contains core domain types for the campus assistant.
package domain

import (
	"time"
)

// Visitor is an anonymous device identity together with the role chosen in the shell.
type Visitor struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasRole returns true once the visitor picked a role in the shell.
func (v *Visitor) HasRole() bool {
	return v.Role != ""
}

// IdleFor returns how long the visitor has been inactive at now.
// Returns 0 if LastSeenAt lies in the future.
func (v *Visitor) IdleFor(now time.Time) time.Duration {
	idle := now.Sub(v.LastSeenAt)
	if idle < 0 {
		return 0
	}
	return idle
}
