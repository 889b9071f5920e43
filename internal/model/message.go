package model

// MessageKind is the type of an inbound chat message we act upon.
type MessageKind string

const (
	MessageText     MessageKind = "text"
	MessageLocation MessageKind = "location"
	MessageButton   MessageKind = "button"
	MessageOther    MessageKind = "other"
)

// InboundMessage is a channel-independent view of one user message.
type InboundMessage struct {
	ID       string      `json:"id"`
	From     string      `json:"from"`
	Kind     MessageKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Location *GeoPoint   `json:"location,omitempty"`
	ButtonID string      `json:"button_id,omitempty"`
}

// Button is a quick-reply button offered in an outbound message.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
