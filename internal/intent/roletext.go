package intent

import "github.com/ashureev/campus-assist/internal/domain"

// RoleText maps roles to display text. Other is required and answers for
// every role without an explicit entry.
type RoleText struct {
	Other  string
	ByRole map[domain.Role]string
}

// For returns the text for role, falling back to Other.
func (t RoleText) For(role domain.Role) string {
	if text, ok := t.ByRole[role]; ok && text != "" {
		return text
	}
	return t.Other
}

// studentOr returns a RoleText that answers students with one text and
// everybody else with another.
func studentOr(student, others string) RoleText {
	return RoleText{
		Other:  others,
		ByRole: map[domain.Role]string{domain.RoleStudent: student},
	}
}
