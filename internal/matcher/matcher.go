// Package matcher finds registered businesses near a user and ranks them
// by distance and, for text searches, by keyword relevance.
//
// A Matcher keeps no state between calls: each search reads a fresh
// catalog snapshot and scans it in full.
package matcher

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"salvo-backend/internal/catalog"
	"salvo-backend/internal/model"
	"salvo-backend/internal/textnorm"
)

// Defaults used when Config leaves a field at zero.
const (
	DefaultRadiusKm    = 5.0
	DefaultResultLimit = 3
)

// Config holds the two tunables of the matcher.
type Config struct {
	DefaultRadiusKm float64
	ResultLimit     int
}

// DefaultConfig returns the production values: 5 km, 3 results.
func DefaultConfig() Config {
	return Config{DefaultRadiusKm: DefaultRadiusKm, ResultLimit: DefaultResultLimit}
}

// Matcher answers proximity and text+proximity searches.
type Matcher struct {
	source catalog.Source
	cfg    Config
	log    zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger. Default is a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Matcher) {
		m.log = log
	}
}

// New creates a Matcher reading from source.
func New(source catalog.Source, cfg Config, opts ...Option) (*Matcher, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultRadiusKm
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	m := &Matcher{source: source, cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns the effective configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// SearchNearby returns up to ResultLimit active, located businesses within
// the query radius, nearest first. q.Category, when set, must occur in the
// business category (case-insensitive). Catalog failures produce an empty
// list; they are logged, never returned.
func (m *Matcher) SearchNearby(ctx context.Context, q model.SearchQuery) []model.MatchResult {
	return m.truncate(m.nearby(ctx, q))
}

// SearchByTextAndLocation ranks nearby businesses by how well they match
// text. Candidates are every business within the radius (category filter
// ignored); those matching no keyword are dropped. Results are ordered by
// relevance, then distance. Keywords in q take precedence over text.
func (m *Matcher) SearchByTextAndLocation(ctx context.Context, q model.SearchQuery, text string) []model.MatchResult {
	q.Category = ""
	pool := m.nearby(ctx, q)
	if len(pool) == 0 {
		return []model.MatchResult{}
	}

	keywords := q.Keywords
	if len(keywords) == 0 {
		keywords = ExtractKeywords(text)
	}

	relevant := make([]model.MatchResult, 0, len(pool))
	for _, res := range pool {
		score := Relevance(res.Name, res.Category, keywords)
		if score <= 0 {
			continue
		}
		res.RelevanceScore = &score
		relevant = append(relevant, res)
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		si, sj := *relevant[i].RelevanceScore, *relevant[j].RelevanceScore
		if si != sj {
			return si > sj
		}
		return relevant[i].DistanceKm < relevant[j].DistanceKm
	})

	m.log.Info().
		Str("text", text).
		Strs("keywords", keywords).
		Int("candidates", len(pool)).
		Int("relevant", len(relevant)).
		Msg("text search completed")

	return m.truncate(relevant)
}

// nearby is the untruncated proximity scan, sorted by distance.
func (m *Matcher) nearby(ctx context.Context, q model.SearchQuery) []model.MatchResult {
	results := []model.MatchResult{}

	snap, err := m.source.Snapshot(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("catalog unavailable, returning no businesses")
		return results
	}
	if snap.Len() == 0 {
		m.log.Warn().Msg("catalog is empty")
		return results
	}

	radius := q.RadiusKm
	if radius <= 0 {
		radius = m.cfg.DefaultRadiusKm
	}
	category := textnorm.Fold(q.Category)

	for _, entry := range snap.Entries() {
		res, ok := m.scanEntry(entry, q, radius, category)
		if ok {
			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	m.log.Info().
		Float64("lat", q.Latitude).
		Float64("lng", q.Longitude).
		Float64("radius_km", radius).
		Str("category", q.Category).
		Int("found", len(results)).
		Msg("nearby businesses found")

	return results
}

// scanEntry is the per-record step of the scan. Any failure skips only
// this record.
func (m *Matcher) scanEntry(entry catalog.Entry, q model.SearchQuery, radius float64, category string) (res model.MatchResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Int("index", entry.Index).Interface("panic", r).Msg("skipping business record")
			ok = false
		}
	}()

	rec, err := entry.Decode()
	if err != nil {
		m.log.Error().Err(err).Int("index", entry.Index).Msg("skipping malformed business record")
		return model.MatchResult{}, false
	}
	if valid, reason := catalog.CheckRecord(rec); !valid {
		m.log.Debug().Str("id", rec.ID).Str("reason", reason).Msg("business not searchable")
		return model.MatchResult{}, false
	}

	km := Distance(q.Latitude, q.Longitude, *rec.Latitude, *rec.Longitude)
	if !(km <= radius) {
		return model.MatchResult{}, false
	}
	if category != "" && !strings.Contains(textnorm.Fold(rec.Category), category) {
		return model.MatchResult{}, false
	}

	return model.MatchResult{
		BusinessRecord: rec,
		DistanceKm:     roundTo(km, 1),
		DistanceMeters: int(roundTo(km*1000, 0)),
	}, true
}

func (m *Matcher) truncate(results []model.MatchResult) []model.MatchResult {
	if len(results) > m.cfg.ResultLimit {
		return results[:m.cfg.ResultLimit]
	}
	return results
}
