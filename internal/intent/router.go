// Package intent classifies chat utterances with an ordered keyword rule table.
//
// Rules are evaluated in declaration order and the first rule with a keyword
// contained in the lowercased utterance wins. Keywords match anywhere inside
// the utterance, including mid-word. When nothing matches the router returns
// the fallback action menu; classification never fails.
package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/campus-assist/internal/domain"
)

// FallbackIntent is the intent name reported when no rule matched.
const FallbackIntent = "fallback"

// Builder produces a fresh payload for a matched rule. The utterance is
// already lowercased.
type Builder func(role domain.Role, utterance string) domain.ResponsePayload

// Rule maps a keyword set to a response builder.
type Rule struct {
	Name     string
	Keywords []string
	Build    Builder
}

func (r Rule) matches(normalized string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// Match is the outcome of routing one utterance.
type Match struct {
	Intent   string
	Payload  domain.ResponsePayload
	Fallback bool
}

// Outcome reports the match as a hit outcome.
func (m Match) Outcome() domain.IntentOutcome {
	if m.Fallback {
		return domain.OutcomeFallback
	}
	return domain.OutcomeResolved
}

// Router holds the immutable rule table.
type Router struct {
	rules []Rule
}

// New validates and copies the rule table. Keywords are lowercased once here.
func New(rules ...Rule) (*Router, error) {
	if len(rules) == 0 {
		return nil, errors.New("intent: rule table must not be empty")
	}

	seen := make(map[string]struct{}, len(rules))
	table := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return nil, fmt.Errorf("intent: rule %d has no name", i)
		}
		if name == FallbackIntent {
			return nil, fmt.Errorf("intent: rule name %q is reserved", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("intent: duplicate rule %q", name)
		}
		seen[name] = struct{}{}
		if rule.Build == nil {
			return nil, fmt.Errorf("intent: rule %q has no builder", name)
		}

		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(kw)
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("intent: rule %q has an empty keyword", name)
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("intent: rule %q has no keywords", name)
		}

		table = append(table, Rule{Name: name, Keywords: keywords, Build: rule.Build})
	}

	return &Router{rules: table}, nil
}

// MustNew is like New but panics on an invalid table.
func MustNew(rules ...Rule) *Router {
	r, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewDefault returns a router over the campus rule table.
func NewDefault() *Router {
	return MustNew(DefaultRules()...)
}

// Route classifies an utterance and reports which intent produced the payload.
func (r *Router) Route(utterance string, role domain.Role) Match {
	role = domain.ParseRole(string(role))
	normalized := strings.ToLower(utterance)

	for _, rule := range r.rules {
		if rule.matches(normalized) {
			return Match{Intent: rule.Name, Payload: rule.Build(role, normalized)}
		}
	}
	return Match{Intent: FallbackIntent, Payload: fallbackPayload(), Fallback: true}
}

// Classify returns the payload for an utterance and role.
func (r *Router) Classify(utterance string, role domain.Role) domain.ResponsePayload {
	return r.Route(utterance, role).Payload
}

// Rules returns the rule names in priority order.
func (r *Router) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}
