package intent

import (
	"strings"

	"github.com/ashureev/campus-assist/internal/domain"
)

// Action tokens emitted by the built-in menus.
const (
	TokenShowMap         = "show_map"
	TokenShowSearch      = "show_search"
	TokenShowDepartments = "show_departments"
	TokenShowContact     = "show_contact"
	TokenContinue        = "continue"
)

// navigation holds the actions answered with canned payloads. Every other
// token is classified as if the user had typed it.
var navigation = map[string]func() domain.ResponsePayload{
	TokenShowMap: func() domain.ResponsePayload {
		return mapPayload("Here's our interactive campus map! You can click on buildings for more details.", "")
	},
	TokenShowSearch: func() domain.ResponsePayload {
		return searchPayload("Use the search below to find departments, services, events, and facilities:")
	},
}

// RouteAction resolves a quick-action token. Navigation tokens report the
// intent "action:<token>".
func (r *Router) RouteAction(token string, role domain.Role) Match {
	token = strings.TrimSpace(token)
	if build, ok := navigation[token]; ok {
		return Match{Intent: "action:" + token, Payload: build()}
	}
	return r.Route(token, role)
}

// ResolveAction returns the payload for a pressed quick-action button.
func (r *Router) ResolveAction(token string, role domain.Role) domain.ResponsePayload {
	return r.RouteAction(token, role).Payload
}
