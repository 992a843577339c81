// Package catalog provides the static campus reference data and the
// relevance-ranked search over it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/campus-assist/internal/domain"
)

// MaxResults caps the number of search hits.
const MaxResults = 6

// Relevance weights per matched field.
const (
	titleWeight       = 3
	descriptionWeight = 2
	categoryWeight    = 1
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Entries   []domain.CatalogEntry `yaml:"entries"`
	Buildings []domain.Building     `yaml:"buildings"`
	Events    []domain.Event        `yaml:"events"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	entries   []domain.CatalogEntry
	buildings []domain.Building
	events    []domain.Event
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog parsed from the embedded data file.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedCatalog)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is like Default but panics if the embedded data is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(f.Entries, f.Buildings, f.Events)
}

// New builds a catalog from in-memory data. Inputs are copied.
func New(entries []domain.CatalogEntry, buildings []domain.Building, events []domain.Event) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog: no entries")
	}
	ids := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("catalog: entry %d has no id", i)
		}
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("catalog: entry %q has no title", e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry id %q", e.ID)
		}
		ids[e.ID] = struct{}{}
	}

	ids = make(map[string]struct{}, len(buildings))
	for i, b := range buildings {
		if strings.TrimSpace(b.ID) == "" || strings.TrimSpace(b.Name) == "" {
			return nil, fmt.Errorf("catalog: building %d needs an id and a name", i)
		}
		if _, dup := ids[b.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate building id %q", b.ID)
		}
		ids[b.ID] = struct{}{}
	}

	return &Catalog{
		entries:   slices.Clone(entries),
		buildings: slices.Clone(buildings),
		events:    slices.Clone(events),
	}, nil
}

// Search ranks entries by weighted substring relevance: title 3,
// description 2, category 1. Entries scoring 0 are dropped, ties keep catalog
// order and at most MaxResults hits are returned. A blank query returns nil;
// otherwise the query is matched as typed, surrounding spaces included.
func (c *Catalog) Search(query string) []domain.ScoredEntry {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	q := strings.ToLower(query)

	var hits []domain.ScoredEntry
	for _, e := range c.entries {
		if score := relevance(e, q); score > 0 {
			hits = append(hits, domain.ScoredEntry{CatalogEntry: e, Relevance: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b domain.ScoredEntry) int {
		return b.Relevance - a.Relevance
	})
	if len(hits) > MaxResults {
		hits = hits[:MaxResults]
	}
	return hits
}

func relevance(e domain.CatalogEntry, q string) int {
	score := 0
	if strings.Contains(strings.ToLower(e.Title), q) {
		score += titleWeight
	}
	if strings.Contains(strings.ToLower(e.Description), q) {
		score += descriptionWeight
	}
	if strings.Contains(strings.ToLower(e.Category), q) {
		score += categoryWeight
	}
	return score
}

// Entry returns the entry with id.
func (c *Catalog) Entry(id string) (domain.CatalogEntry, bool) {
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.CatalogEntry{}, false
}

// Buildings filters map markers by name, type or description. An empty query
// returns every building.
func (c *Catalog) Buildings(query string) []domain.Building {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Building, 0, len(c.buildings))
	for _, b := range c.buildings {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Name), q) ||
			strings.Contains(strings.ToLower(b.Type), q) ||
			strings.Contains(strings.ToLower(b.Description), q) {
			out = append(out, cloneBuilding(b))
		}
	}
	return out
}

// Building returns the map marker with id.
func (c *Catalog) Building(id string) (domain.Building, bool) {
	for _, b := range c.buildings {
		if b.ID == id {
			return cloneBuilding(b), true
		}
	}
	return domain.Building{}, false
}

// Events returns the events shown to role, in catalog order.
func (c *Catalog) Events(role domain.Role) []domain.Event {
	var out []domain.Event
	for _, e := range c.events {
		if slices.Contains(e.Audience, role) {
			e.Audience = slices.Clone(e.Audience)
			out = append(out, e)
		}
	}
	return out
}

func cloneBuilding(b domain.Building) domain.Building {
	b.Facilities = slices.Clone(b.Facilities)
	return b
}
