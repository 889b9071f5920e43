// Package analytics records the searches answered to users.
//
// Recording never affects the search itself: publisher failures are logged
// and swallowed by Record.
package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salvo-backend/internal/model"
)

// Publisher delivers search events to a sink.
type Publisher interface {
	Publish(ctx context.Context, evt model.SearchPerformed) error
}

// Search is what the caller knows about a finished search.
type Search struct {
	Phone    string
	Location model.GeoPoint
	Type     model.SearchType
	Term     string
	Keywords []string
	Intent   model.IntentKind
	Results  int
}

// NewEvent stamps s with a fresh interaction id and the time fields.
func NewEvent(s Search, now time.Time) model.SearchPerformed {
	if s.Type == "" {
		s.Type = model.SearchTypeText
	}
	return model.SearchPerformed{
		InteractionID: uuid.NewString(),
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		Phone:         s.Phone,
		Location:      s.Location,
		SearchType:    s.Type,
		SearchTerm:    s.Term,
		Keywords:      s.Keywords,
		Intent:        s.Intent,
		ResultsCount:  s.Results,
		Hour:          now.Hour(),
		DayOfWeek:     strings.ToLower(now.Weekday().String()),
	}
}

// Record publishes evt and logs the outcome. Errors are not returned.
func Record(ctx context.Context, log zerolog.Logger, pub Publisher, evt model.SearchPerformed) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("interaction_id", evt.InteractionID).Msg("failed to record search")
		return
	}
	log.Debug().
		Str("interaction_id", evt.InteractionID).
		Str("search_type", string(evt.SearchType)).
		Int("results", evt.ResultsCount).
		Msg("search recorded")
}

// Multi publishes to every sink, even after one fails.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt model.SearchPerformed) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, model.SearchPerformed) error { return nil }
