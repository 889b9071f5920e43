// Package projections rolls search events into Redis read models used for
// reporting: per-day counters and per-day rankings.
package projections

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"salvo-backend/internal/model"
)

// StatsTTL bounds how long a day's read models are kept.
const StatsTTL = 90 * 24 * time.Hour

// Hash fields of stats:daily:<date>.
const (
	fieldTotal     = "total"
	fieldNoResults = "no_results"
	prefixType     = "search_type:"
	prefixHour     = "hour:"
	prefixCity     = "city:"
)

// DailyKey is the hash holding one day's counters.
func DailyKey(date string) string { return "stats:daily:" + date }

// DailyStats is the decoded content of a DailyKey hash.
type DailyStats struct {
	Date        string           `json:"date"`
	Total       int64            `json:"total_interactions"`
	NoResults   int64            `json:"no_results"`
	SearchTypes map[string]int64 `json:"search_types"`
	Hours       map[string]int64 `json:"hours"`
	Cities      map[string]int64 `json:"cities"`
}

// EventDate returns the UTC day of evt, falling back to today when the
// timestamp does not parse.
func EventDate(evt model.SearchPerformed) string {
	ts, err := time.Parse(time.RFC3339Nano, evt.Timestamp)
	if err != nil {
		ts = time.Now()
	}
	return ts.UTC().Format("2006-01-02")
}

// UpdateDailyStats increments the counters of the event's day.
func UpdateDailyStats(ctx context.Context, rdb redis.Cmdable, evt model.SearchPerformed) error {
	key := DailyKey(EventDate(evt))

	fields := []string{
		fieldTotal,
		prefixType + string(evt.SearchType),
		prefixHour + strconv.Itoa(evt.Hour),
	}
	if evt.Location.City != "" {
		fields = append(fields, prefixCity+evt.Location.City)
	}
	if evt.ResultsCount == 0 {
		fields = append(fields, fieldNoResults)
	}

	for _, f := range fields {
		if err := rdb.HIncrBy(ctx, key, f, 1).Err(); err != nil {
			return errors.Wrapf(err, "hincrby %s %s", key, f)
		}
	}
	if err := rdb.Expire(ctx, key, StatsTTL).Err(); err != nil {
		return errors.Wrapf(err, "expire %s", key)
	}
	return nil
}

// ReadDailyStats loads one day's counters. A missing day is all zeros.
func ReadDailyStats(ctx context.Context, rdb redis.Cmdable, date string) (DailyStats, error) {
	out := DailyStats{
		Date:        date,
		SearchTypes: map[string]int64{},
		Hours:       map[string]int64{},
		Cities:      map[string]int64{},
	}

	raw, err := rdb.HGetAll(ctx, DailyKey(date)).Result()
	if err != nil {
		return out, errors.Wrapf(err, "hgetall %s", DailyKey(date))
	}

	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == fieldTotal:
			out.Total = n
		case field == fieldNoResults:
			out.NoResults = n
		case strings.HasPrefix(field, prefixType):
			out.SearchTypes[strings.TrimPrefix(field, prefixType)] = n
		case strings.HasPrefix(field, prefixHour):
			out.Hours[strings.TrimPrefix(field, prefixHour)] = n
		case strings.HasPrefix(field, prefixCity):
			out.Cities[strings.TrimPrefix(field, prefixCity)] = n
		}
	}
	return out, nil
}
