package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"salvo-backend/internal/model"
)

const (
	// MaxButtons is the platform limit for reply buttons per message.
	MaxButtons = 3
	// MaxButtonTitle is the platform limit for a button title, in characters.
	MaxButtonTitle = 20

	countryCode = "55"
)

// ErrNotConfigured is returned when no access token or phone number id is set.
var ErrNotConfigured = errors.New("whatsapp not configured")

// APIError is a non-2xx reply from the Cloud API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api status %d: %s", e.Status, e.Body)
}

// Sender posts outbound messages to /<phone-number-id>/messages.
type Sender struct {
	client        *resty.Client
	phoneNumberID string
	configured    bool
	log           zerolog.Logger
}

// NewSender targets baseURL, e.g. https://graph.facebook.com/v18.0.
// An empty token or phoneNumberID gives a Sender that always returns
// ErrNotConfigured.
func NewSender(baseURL, token, phoneNumberID string, log zerolog.Logger) *Sender {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetTimeout(30 * time.Second)

	return &Sender{
		client:        c,
		phoneNumberID: phoneNumberID,
		configured:    token != "" && phoneNumberID != "",
		log:           log,
	}
}

type textBody struct {
	Body string `json:"body"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type interactiveBody struct {
	Type string `json:"type"`
	Body struct {
		Text string `json:"text"`
	} `json:"body"`
	Action struct {
		Buttons []replyButton `json:"buttons"`
	} `json:"action"`
}

type outbound struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *textBody        `json:"text,omitempty"`
	Interactive      *interactiveBody `json:"interactive,omitempty"`
}

// SendText sends a plain text message.
func (s *Sender) SendText(ctx context.Context, phone, body string) error {
	return s.send(ctx, outbound{
		MessagingProduct: "whatsapp",
		To:               CleanPhone(phone),
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

// SendButtons sends body with up to MaxButtons reply buttons. Extra buttons
// are dropped and titles are cut to MaxButtonTitle characters.
func (s *Sender) SendButtons(ctx context.Context, phone, body string, buttons []model.Button) error {
	ib := &interactiveBody{Type: "button"}
	ib.Body.Text = body
	for i, b := range buttons {
		if i == MaxButtons {
			break
		}
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = truncate(b.Title, MaxButtonTitle)
		ib.Action.Buttons = append(ib.Action.Buttons, rb)
	}

	return s.send(ctx, outbound{
		MessagingProduct: "whatsapp",
		To:               CleanPhone(phone),
		Type:             "interactive",
		Interactive:      ib,
	})
}

func (s *Sender) send(ctx context.Context, msg outbound) error {
	if !s.configured {
		s.log.Error().Msg("whatsapp not configured, message dropped")
		return ErrNotConfigured
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&msg).
		Post("/" + s.phoneNumberID + "/messages")
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		s.log.Error().Int("status", resp.StatusCode()).Str("to", msg.To).Msg("whatsapp send failed")
		return &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	s.log.Info().Str("to", msg.To).Str("type", msg.Type).Msg("whatsapp message sent")
	return nil
}

// CleanPhone keeps the digits of phone, drops one leading zero and adds
// the Brazilian country code when missing.
func CleanPhone(phone string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	clean = strings.TrimPrefix(clean, "0")
	if !strings.HasPrefix(clean, countryCode) {
		clean = countryCode + clean
	}
	return clean
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
