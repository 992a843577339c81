// Package dashboard assembles the per-role landing pages of the campus shell.
package dashboard

import (
	_ "embed"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/campus-assist/internal/catalog"
	"github.com/ashureev/campus-assist/internal/domain"
)

// TopIntentLimit caps the intents listed in the admin metrics.
const TopIntentLimit = 5

//go:embed dashboards.yaml
var embeddedDashboards []byte

// Tile is a quick-action card. Token, when set, is a chat quick-action token.
type Tile struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Token       string `json:"token,omitempty" yaml:"token"`
}

// Item is one labeled value inside a section.
type Item struct {
	Label  string `json:"label" yaml:"label"`
	Value  string `json:"value" yaml:"value"`
	Detail string `json:"detail,omitempty" yaml:"detail"`
	Status string `json:"status,omitempty" yaml:"status"`
}

// Section groups items under a heading.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

type page struct {
	Title        string    `yaml:"title"`
	Subtitle     string    `yaml:"subtitle"`
	QuickActions []Tile    `yaml:"quick_actions"`
	Sections     []Section `yaml:"sections"`
}

// IntentCount is one row of the top intents table.
type IntentCount struct {
	Intent string `json:"intent"`
	Hits   int64  `json:"hits"`
}

// ChatMetrics summarizes chatbot usage for administrators.
type ChatMetrics struct {
	TotalInteractions int64         `json:"total_interactions"`
	Resolved          int64         `json:"resolved"`
	Fallbacks         int64         `json:"fallbacks"`
	ResolutionRate    float64       `json:"resolution_rate"`
	ActiveSessions    int           `json:"active_sessions"`
	TopIntents        []IntentCount `json:"top_intents"`
}

// Stats is the live data the admin dashboard is built from.
type Stats struct {
	Intents        []domain.IntentStat
	ActiveSessions int
}

// Dashboard is the landing page content for one role.
type Dashboard struct {
	Role         domain.Role    `json:"role"`
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle"`
	QuickActions []Tile         `json:"quick_actions"`
	Sections     []Section      `json:"sections"`
	Events       []domain.Event `json:"events,omitempty"`
	Metrics      *ChatMetrics   `json:"metrics,omitempty"`
}

var (
	pagesOnce sync.Once
	pages     map[domain.Role]page
	pagesErr  error
)

func loadPages() (map[domain.Role]page, error) {
	pagesOnce.Do(func() {
		pages, pagesErr = parsePages(embeddedDashboards)
	})
	return pages, pagesErr
}

func parsePages(data []byte) (map[domain.Role]page, error) {
	var raw map[domain.Role]page
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dashboard: decode: %w", err)
	}
	for _, role := range domain.Roles {
		p, ok := raw[role]
		if !ok || strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("dashboard: missing page for role %q", role)
		}
	}
	return raw, nil
}

// Build returns the dashboard for role. Unknown roles get the general page.
// Only the admin page uses stats.
func Build(role domain.Role, stats Stats) (Dashboard, error) {
	all, err := loadPages()
	if err != nil {
		return Dashboard{}, err
	}

	role = domain.ParseRole(string(role))
	p := all[role]

	d := Dashboard{
		Role:         role,
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		QuickActions: slices.Clone(p.QuickActions),
		Sections:     cloneSections(p.Sections),
	}

	if role == domain.RoleAdmin {
		m := Metrics(stats)
		d.Metrics = &m
		return d, nil
	}

	cat, err := catalog.Default()
	if err != nil {
		return Dashboard{}, err
	}
	d.Events = cat.Events(role)
	return d, nil
}

// Metrics aggregates intent counters into admin metrics.
func Metrics(stats Stats) ChatMetrics {
	m := ChatMetrics{ActiveSessions: stats.ActiveSessions, TopIntents: []IntentCount{}}

	byIntent := make(map[string]int64)
	for _, st := range stats.Intents {
		m.TotalInteractions += st.Hits
		if st.Outcome == domain.OutcomeFallback {
			m.Fallbacks += st.Hits
			continue
		}
		m.Resolved += st.Hits
		byIntent[st.Intent] += st.Hits
	}

	if m.TotalInteractions > 0 {
		rate := float64(m.Resolved) / float64(m.TotalInteractions)
		m.ResolutionRate = math.Round(rate*1000) / 1000
	}

	for name, hits := range byIntent {
		m.TopIntents = append(m.TopIntents, IntentCount{Intent: name, Hits: hits})
	}
	slices.SortFunc(m.TopIntents, func(a, b IntentCount) int {
		if a.Hits != b.Hits {
			if a.Hits > b.Hits {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Intent, b.Intent)
	})
	if len(m.TopIntents) > TopIntentLimit {
		m.TopIntents = m.TopIntents[:TopIntentLimit]
	}
	return m
}

func cloneSections(in []Section) []Section {
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = Section{Title: s.Title, Items: slices.Clone(s.Items)}
	}
	return out
}
