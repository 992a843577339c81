package domain

// CatalogEntry is a searchable piece of static campus reference data.
type CatalogEntry struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Location    string `json:"location,omitempty" yaml:"location"`
	Schedule    string `json:"schedule,omitempty" yaml:"schedule"`
	Contact     string `json:"contact,omitempty" yaml:"contact"`
}

// ScoredEntry is a search hit with its relevance score.
type ScoredEntry struct {
	CatalogEntry
	Relevance int `json:"relevance"`
}

// Building is a campus map marker. X and Y are percentages of the map area.
type Building struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Type         string   `json:"type" yaml:"type"`
	Description  string   `json:"description" yaml:"description"`
	X            int      `json:"x" yaml:"x"`
	Y            int      `json:"y" yaml:"y"`
	Facilities   []string `json:"facilities" yaml:"facilities"`
	OpeningHours string   `json:"opening_hours,omitempty" yaml:"opening_hours"`
	Contact      string   `json:"contact,omitempty" yaml:"contact"`
}

// Event is a scheduled campus event shown on dashboards.
type Event struct {
	Name     string `json:"name" yaml:"name"`
	Date     string `json:"date" yaml:"date"`
	Time     string `json:"time" yaml:"time"`
	Location string `json:"location,omitempty" yaml:"location"`
	Type     string `json:"type" yaml:"type"`
	Audience []Role `json:"audience" yaml:"audience"`
}
