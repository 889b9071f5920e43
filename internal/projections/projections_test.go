package projections

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvo-backend/internal/model"
)

// fakeRedis implements the hash, sorted set and expire commands used here.
type fakeRedis struct {
	redis.Cmdable

	mu      sync.Mutex
	hashes  map[string]map[string]int64
	zsets   map[string]map[string]float64
	ttls    map[string]time.Duration
	failing bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes: map[string]map[string]int64{},
		zsets:  map[string]map[string]float64{},
		ttls:   map[string]time.Duration{},
	}
}

var errDown = errors.New("redis down")

func (f *fakeRedis) HIncrBy(_ context.Context, key, field string, incr int64) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewIntResult(0, errDown)
	}
	if f.hashes[key] == nil {
		f.hashes[key] = map[string]int64{}
	}
	f.hashes[key][field] += incr
	return redis.NewIntResult(f.hashes[key][field], nil)
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = strconv.FormatInt(v, 10)
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeRedis) ZIncrBy(_ context.Context, key string, incr float64, member string) *redis.FloatCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewFloatResult(0, errDown)
	}
	if f.zsets[key] == nil {
		f.zsets[key] = map[string]float64{}
	}
	f.zsets[key][member] += incr
	return redis.NewFloatResult(f.zsets[key][member], nil)
}

func (f *fakeRedis) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zs []redis.Z
	for m, s := range f.zsets[key] {
		zs = append(zs, redis.Z{Member: m, Score: s})
	}
	sort.Slice(zs, func(i, j int) bool {
		if zs[i].Score != zs[j].Score {
			return zs[i].Score > zs[j].Score
		}
		return zs[i].Member.(string) < zs[j].Member.(string)
	})
	if int(start) >= len(zs) {
		return redis.NewZSliceCmdResult(nil, nil)
	}
	end := int(stop) + 1
	if end > len(zs) {
		end = len(zs)
	}
	return redis.NewZSliceCmdResult(zs[start:end], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = exp
	return redis.NewBoolResult(true, nil)
}

func event(term, city string, st model.SearchType, hour, results int) model.SearchPerformed {
	return model.SearchPerformed{
		InteractionID: "i",
		Timestamp:     "2026-03-14T21:30:00.5Z",
		Location:      model.GeoPoint{City: city},
		SearchType:    st,
		SearchTerm:    term,
		Hour:          hour,
		ResultsCount:  results,
	}
}

func TestEventDate(t *testing.T) {
	assert.Equal(t, "2026-03-14", EventDate(event("", "", model.SearchTypeText, 0, 0)))
	assert.Equal(t, "2026-03-15", EventDate(model.SearchPerformed{Timestamp: "2026-03-14T23:30:00-03:00"}))
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), EventDate(model.SearchPerformed{Timestamp: "yesterday"}))
}

func TestUpdateDailyStats(t *testing.T) {
	rdb := newFakeRedis()
	ctx := context.Background()

	require.NoError(t, UpdateDailyStats(ctx, rdb, event("pizza", "São Paulo", model.SearchTypeText, 21, 2)))
	require.NoError(t, UpdateDailyStats(ctx, rdb, event("", "São Paulo", model.SearchTypeLocation, 21, 0)))
	require.NoError(t, UpdateDailyStats(ctx, rdb, event("pão", "", model.SearchTypeText, 7, 1)))

	stats, err := ReadDailyStats(ctx, rdb, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.NoResults)
	assert.Equal(t, map[string]int64{"text": 2, "location": 1}, stats.SearchTypes)
	assert.Equal(t, map[string]int64{"21": 2, "7": 1}, stats.Hours)
	assert.Equal(t, map[string]int64{"São Paulo": 2}, stats.Cities)
	assert.Equal(t, StatsTTL, rdb.ttls[DailyKey("2026-03-14")])

	empty, err := ReadDailyStats(ctx, rdb, "2020-01-01")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Cities)
}

func TestUpdateRankings(t *testing.T) {
	rdb := newFakeRedis()
	ctx := context.Background()

	for _, term := range []string{"Farmácia", "farmacia", "pizza", ""} {
		require.NoError(t, UpdateRankings(ctx, rdb, event(term, "Campinas", model.SearchTypeText, 10, 1)))
	}

	terms, err := Top(ctx, rdb, TermsKey("2026-03-14"), 5)
	require.NoError(t, err)
	assert.Equal(t, []Ranked{{Name: "farmacia", Count: 2}, {Name: "pizza", Count: 1}}, terms)

	cities, err := Top(ctx, rdb, CitiesKey("2026-03-14"), 1)
	require.NoError(t, err)
	assert.Equal(t, []Ranked{{Name: "Campinas", Count: 4}}, cities)

	none, err := Top(ctx, rdb, TermsKey("2026-03-14"), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProjector_Publish(t *testing.T) {
	rdb := newFakeRedis()
	p := NewProjector(rdb, zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), event("pizza", "Santos", model.SearchTypeText, 12, 3)))
	assert.Equal(t, int64(1), rdb.hashes[DailyKey("2026-03-14")]["total"])
	assert.Equal(t, 1.0, rdb.zsets[TermsKey("2026-03-14")]["pizza"])

	rdb.failing = true
	assert.ErrorIs(t, p.Publish(context.Background(), event("pizza", "Santos", model.SearchTypeText, 12, 3)), errDown)
}
