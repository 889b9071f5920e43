package projections

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"salvo-backend/internal/model"
	"salvo-backend/internal/textnorm"
)

// TermsKey ranks the search terms of one day.
func TermsKey(date string) string { return "stats:terms:" + date }

// CitiesKey ranks the cities searched from on one day.
func CitiesKey(date string) string { return "stats:cities:" + date }

// Ranked is one member of a ranking with its count.
type Ranked struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// UpdateRankings bumps the event's term and city in the day's sorted sets.
// Terms are folded so "Farmácia" and "farmacia" count together.
func UpdateRankings(ctx context.Context, rdb redis.Cmdable, evt model.SearchPerformed) error {
	date := EventDate(evt)

	if term := textnorm.Fold(evt.SearchTerm); term != "" {
		if err := bump(ctx, rdb, TermsKey(date), term); err != nil {
			return err
		}
	}
	if evt.Location.City != "" {
		if err := bump(ctx, rdb, CitiesKey(date), evt.Location.City); err != nil {
			return err
		}
	}
	return nil
}

func bump(ctx context.Context, rdb redis.Cmdable, key, member string) error {
	if err := rdb.ZIncrBy(ctx, key, 1, member).Err(); err != nil {
		return errors.Wrapf(err, "zincrby %s", key)
	}
	if err := rdb.Expire(ctx, key, StatsTTL).Err(); err != nil {
		return errors.Wrapf(err, "expire %s", key)
	}
	return nil
}

// Top returns the n highest ranked members of key.
func Top(ctx context.Context, rdb redis.Cmdable, key string, n int) ([]Ranked, error) {
	if n <= 0 {
		return []Ranked{}, nil
	}
	zs, err := rdb.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "zrevrange %s", key)
	}
	out := make([]Ranked, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, Ranked{Name: name, Count: int64(z.Score)})
	}
	return out, nil
}
