package domain

import "strings"

// Role classifies the caller. It is decided by the application shell and
// never inferred from chat input.
type Role string

const (
	RoleStudent Role = "student"
	RoleVisitor Role = "visitor"
	RoleAdmin   Role = "admin"
	RoleOther   Role = "other"
)

// Roles lists every recognized role in display order.
var Roles = []Role{RoleStudent, RoleVisitor, RoleAdmin, RoleOther}

// ParseRole normalizes a raw role value. Unrecognized values degrade to RoleOther.
func ParseRole(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if r.Valid() {
		return r
	}
	return RoleOther
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleVisitor, RoleAdmin, RoleOther:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
