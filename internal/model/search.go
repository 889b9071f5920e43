package model

// SearchQuery is built per request by the caller and never mutated.
// RadiusKm == 0 means "use the configured default radius".
type SearchQuery struct {
	Latitude  float64  `json:"lat" validate:"latitude"`
	Longitude float64  `json:"lng" validate:"longitude"`
	RadiusKm  float64  `json:"radius_km,omitempty" validate:"gte=0"`
	Category  string   `json:"category,omitempty"`
	Keywords  []string `json:"keywords,omitempty" validate:"max=5"`
}

// MatchResult is a BusinessRecord annotated with its distance from the
// user and, when keyword matching ran, its relevance score.
type MatchResult struct {
	BusinessRecord
	DistanceKm     float64  `json:"distance_km"`
	DistanceMeters int      `json:"distance_meters"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// IntentKind is the coarse purpose of an inbound user message.
type IntentKind string

const (
	IntentUnknown  IntentKind = "unknown"
	IntentGreeting IntentKind = "greeting"
	IntentSearch   IntentKind = "search"
	IntentRegister IntentKind = "register"
	IntentHelp     IntentKind = "help"
)

// Intent is the classifier output. Keywords is only set for IntentSearch.
type Intent struct {
	Kind     IntentKind `json:"intent"`
	Keywords []string   `json:"keywords,omitempty"`
}
