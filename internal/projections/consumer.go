package projections

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salvo-backend/internal/kstream"
	"salvo-backend/internal/model"
)

// Projector applies search events to the Redis read models.
// It satisfies analytics.Publisher, so it can run inline when Kafka is off.
type Projector struct {
	rdb redis.Cmdable
	log zerolog.Logger
}

// NewProjector writes through rdb.
func NewProjector(rdb redis.Cmdable, log zerolog.Logger) *Projector {
	return &Projector{rdb: rdb, log: log}
}

// Publish updates every projection. The first failure is returned, after
// the remaining projections have been attempted.
func (p *Projector) Publish(ctx context.Context, evt model.SearchPerformed) error {
	statsErr := UpdateDailyStats(ctx, p.rdb, evt)
	if statsErr != nil {
		p.log.Error().Err(statsErr).Msg("daily stats projection failed")
	}
	rankErr := UpdateRankings(ctx, p.rdb, evt)
	if rankErr != nil {
		p.log.Error().Err(rankErr).Msg("ranking projection failed")
	}
	if statsErr != nil {
		return statsErr
	}
	return rankErr
}

// Run consumes the search topic until ctx is cancelled.
func (p *Projector) Run(ctx context.Context, reader kstream.MessageReader) error {
	defer reader.Close()
	p.log.Info().Msg("projectors consuming search events")
	return kstream.Consume(ctx, reader, p.log, p.Publish)
}
