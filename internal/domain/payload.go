package domain

// ContentKind tells the view layer how to render a payload.
type ContentKind string

const (
	// KindPlain is a text-only message.
	KindPlain ContentKind = "plain"
	// KindStructuredList is a list of titled values.
	KindStructuredList ContentKind = "structuredList"
	// KindActionMenu is a set of quick-action buttons.
	KindActionMenu ContentKind = "actionMenu"
	// KindMapRef asks the view to render the campus map.
	KindMapRef ContentKind = "mapRef"
	// KindSearchRef asks the view to render the catalog search box.
	KindSearchRef ContentKind = "searchRef"
)

// ResponsePayload is the structured result of classifying one utterance.
type ResponsePayload struct {
	DisplayText string      `json:"display_text"`
	Kind        ContentKind `json:"content_kind"`
	Data        ContentData `json:"content_data"`
}

// ContentData holds the kind-specific value. Only the field matching the
// payload kind is populated.
type ContentData struct {
	Items   []ListItem `json:"items,omitempty"`
	Actions []Action   `json:"actions,omitempty"`
	Map     *MapRef    `json:"map,omitempty"`
	Search  *SearchRef `json:"search,omitempty"`
}

// ListItem is one row of a structured list.
type ListItem struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// Action is a quick-action button. Token is fed back to the dispatcher when pressed.
type Action struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Token string `json:"token"`
}

// MapRef points the view at the campus map, optionally pre-filtered.
type MapRef struct {
	SearchQuery string `json:"search_query"`
}

// SearchRef points the view at the catalog search box.
type SearchRef struct {
	Placeholder string `json:"placeholder"`
}

// PlainPayload wraps text in a plain payload.
func PlainPayload(text string) ResponsePayload {
	return ResponsePayload{DisplayText: text, Kind: KindPlain}
}

// Tokens returns the action tokens of an action menu payload in order.
func (p ResponsePayload) Tokens() []string {
	tokens := make([]string, 0, len(p.Data.Actions))
	for _, a := range p.Data.Actions {
		tokens = append(tokens, a.Token)
	}
	return tokens
}

// Item returns the list item with the given title, if present.
func (p ResponsePayload) Item(title string) (ListItem, bool) {
	for _, it := range p.Data.Items {
		if it.Title == title {
			return it, true
		}
	}
	return ListItem{}, false
}
