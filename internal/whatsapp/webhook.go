// Package whatsapp speaks the WhatsApp Business Cloud API: it decodes
// webhook deliveries and sends replies.
package whatsapp

import (
	"strings"

	"salvo-backend/internal/model"
)

// WebhookPayload is the body of a webhook POST.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
}

// Message is one user message inside a change.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`

	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name,omitempty"`
		Address   string  `json:"address,omitempty"`
	} `json:"location,omitempty"`

	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
	} `json:"interactive,omitempty"`

	// Button is a quick reply on a template message.
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button,omitempty"`
}

// Messages flattens the user messages of every "messages" change, in
// delivery order. Status updates and other fields are ignored.
func (p WebhookPayload) Messages() []model.InboundMessage {
	var out []model.InboundMessage
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			if c.Field != "messages" {
				continue
			}
			for _, m := range c.Value.Messages {
				out = append(out, m.ToInbound())
			}
		}
	}
	return out
}

// ToInbound converts m to the channel-independent form.
func (m Message) ToInbound() model.InboundMessage {
	in := model.InboundMessage{ID: m.ID, From: m.From, Kind: model.MessageOther}

	switch m.Type {
	case "text":
		if m.Text != nil {
			in.Kind = model.MessageText
			in.Text = m.Text.Body
		}
	case "location":
		if m.Location != nil {
			in.Kind = model.MessageLocation
			in.Location = &model.GeoPoint{Latitude: m.Location.Latitude, Longitude: m.Location.Longitude}
			in.Text = strings.TrimSpace(m.Location.Name + " " + m.Location.Address)
		}
	case "interactive":
		if m.Interactive != nil && m.Interactive.ButtonReply != nil {
			in.Kind = model.MessageButton
			in.ButtonID = m.Interactive.ButtonReply.ID
			in.Text = m.Interactive.ButtonReply.Title
		}
	case "button":
		if m.Button != nil {
			in.Kind = model.MessageButton
			in.ButtonID = m.Button.Payload
			in.Text = m.Button.Text
		}
	}
	return in
}
