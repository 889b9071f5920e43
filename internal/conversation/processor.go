// Package conversation turns inbound chat messages into replies: it
// classifies text, remembers each user's location and pending search, runs
// the matcher and records every search for analytics.
package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"salvo-backend/internal/analytics"
	"salvo-backend/internal/intent"
	"salvo-backend/internal/model"
)

// Replier sends messages back to a user.
type Replier interface {
	SendText(ctx context.Context, phone, body string) error
	SendButtons(ctx context.Context, phone, body string, buttons []model.Button) error
}

// Searcher is the matcher as seen by the conversation.
type Searcher interface {
	SearchNearby(ctx context.Context, q model.SearchQuery) []model.MatchResult
	SearchByTextAndLocation(ctx context.Context, q model.SearchQuery, text string) []model.MatchResult
}

// Processor handles one message at a time per user. It is safe for
// concurrent use across users.
type Processor struct {
	classifier *intent.Classifier
	search     Searcher
	reply      Replier
	sessions   SessionStore
	events     analytics.Publisher
	recordWait time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// defaultRecordWait bounds how long recording one search may take.
const defaultRecordWait = 2 * time.Second

// Option configures a Processor.
type Option func(*Processor)

// WithAnalytics records searches to pub.
func WithAnalytics(pub analytics.Publisher) Option {
	return func(p *Processor) { p.events = pub }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// NewProcessor wires the collaborators. Analytics defaults to analytics.Nop.
func NewProcessor(search Searcher, reply Replier, sessions SessionStore, opts ...Option) *Processor {
	p := &Processor{
		search:     search,
		reply:      reply,
		sessions:   sessions,
		events:     analytics.Nop{},
		recordWait: defaultRecordWait,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.classifier = intent.NewClassifier(p.log)
	return p
}

// Handle reacts to msg. The returned error is the reply failure, if any;
// session and analytics failures are logged only.
func (p *Processor) Handle(ctx context.Context, msg model.InboundMessage) error {
	log := p.log.With().Str("message_id", msg.ID).Str("from", msg.From).Str("kind", string(msg.Kind)).Logger()
	log.Info().Msg("handling message")

	switch msg.Kind {
	case model.MessageText:
		return p.handleText(ctx, log, msg.From, msg.Text)
	case model.MessageLocation:
		if msg.Location == nil {
			return p.reply.SendText(ctx, msg.From, replyUnsupported)
		}
		return p.handleLocation(ctx, log, msg.From, *msg.Location)
	case model.MessageButton:
		return p.handleButton(ctx, log, msg.From, msg.ButtonID)
	default:
		return p.reply.SendText(ctx, msg.From, replyUnsupported)
	}
}

func (p *Processor) handleText(ctx context.Context, log zerolog.Logger, phone, text string) error {
	in := p.classifier.Classify(text)

	switch in.Kind {
	case model.IntentGreeting:
		return p.reply.SendButtons(ctx, phone, replyWelcome, menuButtons)
	case model.IntentRegister:
		return p.reply.SendText(ctx, phone, replyRegister)
	case model.IntentHelp, model.IntentUnknown:
		return p.reply.SendText(ctx, phone, replyHelp)
	}

	sess := p.loadSession(ctx, log, phone)
	if sess.Location == nil {
		sess.PendingSearch = text
		p.saveSession(ctx, log, phone, sess)
		return p.reply.SendText(ctx, phone, replyAskLocation)
	}

	results := p.search.SearchByTextAndLocation(ctx, queryAt(*sess.Location), text)
	err := p.reply.SendText(ctx, phone, FormatResults(results))
	p.record(ctx, log, phone, *sess.Location, model.SearchTypeText, text, in, len(results))
	return err
}

func (p *Processor) handleLocation(ctx context.Context, log zerolog.Logger, phone string, loc model.GeoPoint) error {
	sess := p.loadSession(ctx, log, phone)
	pending := sess.PendingSearch

	sess.Location = &loc
	sess.PendingSearch = ""
	p.saveSession(ctx, log, phone, sess)

	if pending != "" {
		results := p.search.SearchByTextAndLocation(ctx, queryAt(loc), pending)
		err := p.reply.SendText(ctx, phone, FormatResults(results))
		p.record(ctx, log, phone, loc, model.SearchTypeText, pending, intent.Classify(pending), len(results))
		return err
	}
	results := p.search.SearchNearby(ctx, queryAt(loc))
	err := p.reply.SendText(ctx, phone, FormatResults(results))
	p.record(ctx, log, phone, loc, model.SearchTypeLocation, "", model.Intent{}, len(results))
	return err
}

func (p *Processor) handleButton(ctx context.Context, log zerolog.Logger, phone, id string) error {
	switch id {
	case ButtonSearch:
		sess := p.loadSession(ctx, log, phone)
		if sess.Location == nil {
			return p.reply.SendText(ctx, phone, replyAskLocation)
		}
		return p.handleLocation(ctx, log, phone, *sess.Location)
	case ButtonRegister:
		return p.reply.SendText(ctx, phone, replyRegister)
	case ButtonHelp:
		return p.reply.SendText(ctx, phone, replyHelp)
	}
	log.Warn().Str("button_id", id).Msg("unknown button")
	return p.reply.SendButtons(ctx, phone, replyWelcome, menuButtons)
}

func (p *Processor) loadSession(ctx context.Context, log zerolog.Logger, phone string) Session {
	sess, err := p.sessions.Load(ctx, phone)
	if err != nil {
		log.Error().Err(err).Msg("session unavailable, starting fresh")
		return Session{}
	}
	return sess
}

func (p *Processor) saveSession(ctx context.Context, log zerolog.Logger, phone string, sess Session) {
	if err := p.sessions.Save(ctx, phone, sess); err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}
}

// record runs after the reply is sent, detached from ctx cancellation and
// bounded by recordWait.
func (p *Processor) record(ctx context.Context, log zerolog.Logger, phone string, loc model.GeoPoint,
	st model.SearchType, term string, in model.Intent, results int) {
	evt := analytics.NewEvent(analytics.Search{
		Phone:    phone,
		Location: loc,
		Type:     st,
		Term:     term,
		Keywords: in.Keywords,
		Intent:   in.Kind,
		Results:  results,
	}, p.now())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.recordWait)
	defer cancel()
	analytics.Record(ctx, log, p.events, evt)
}

// queryAt searches around loc with the matcher's default radius.
func queryAt(loc model.GeoPoint) model.SearchQuery {
	return model.SearchQuery{Latitude: loc.Latitude, Longitude: loc.Longitude}
}
