package model

// SearchType tells analytics how a search was started.
type SearchType string

const (
	SearchTypeText     SearchType = "text"
	SearchTypeLocation SearchType = "location"
)

// GeoPoint is a user position as reported by the messaging channel.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
}

// SearchPerformed is emitted after every search answered to a user.
// It is published to Kafka topic salvo.search.events and consumed by the
// daily stats projector.
type SearchPerformed struct {
	InteractionID string     `json:"interaction_id"`
	Timestamp     string     `json:"timestamp"` // RFC3339Nano, UTC
	Phone         string     `json:"phone"`
	Location      GeoPoint   `json:"location"`
	SearchType    SearchType `json:"search_type"`
	SearchTerm    string     `json:"search_term"`
	Keywords      []string   `json:"keywords,omitempty"`
	Intent        IntentKind `json:"intent,omitempty"`
	ResultsCount  int        `json:"results_count"`
	Hour          int        `json:"hour"`
	DayOfWeek     string     `json:"day_of_week"`
}
