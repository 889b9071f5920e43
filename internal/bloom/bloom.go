// Package bloom drops WhatsApp webhook deliveries we have already seen.
// The platform retries deliveries, so the same message id can arrive more
// than once.
package bloom

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultKey is the RedisBloom filter holding inbound message ids.
	DefaultKey = "salvo:messages"

	errorRate = 0.001
	capacity  = 1_000_000
)

// Doer runs raw commands. RedisBloom commands have no typed methods in
// go-redis, so *redis.Client is used through this.
type Doer interface {
	Do(ctx context.Context, args ...interface{}) *redis.Cmd
}

// Seen reports whether an id was already handled and records it.
type Seen interface {
	Seen(ctx context.Context, id string) bool
}

// Filter is a RedisBloom-backed Seen. False positives are possible at
// errorRate; false negatives are not.
type Filter struct {
	rdb Doer
	key string
	log zerolog.Logger
}

// New creates the filter. BF.RESERVE fails when the filter already exists;
// that error is only logged.
func New(ctx context.Context, rdb Doer, key string, log zerolog.Logger) *Filter {
	if key == "" {
		key = DefaultKey
	}
	if err := rdb.Do(ctx, "BF.RESERVE", key, errorRate, capacity).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("bloom reserve skipped (may already exist)")
	}
	return &Filter{rdb: rdb, key: key, log: log}
}

// Seen adds id to the filter. Redis failures count as not seen, so a
// message is processed rather than lost.
func (f *Filter) Seen(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	res := f.rdb.Do(ctx, "BF.ADD", f.key, id)
	if res.Err() != nil {
		f.log.Warn().Err(res.Err()).Msg("bloom BF.ADD failed")
		return false
	}
	// RESP2 replies 1/0, RESP3 replies true/false.
	if n, err := res.Int(); err == nil {
		return n == 0
	}
	added, err := res.Bool()
	if err != nil {
		f.log.Warn().Err(err).Msg("bloom BF.ADD unexpected reply")
		return false
	}
	return !added
}

// Memory is an exact in-process Seen for tests and single-node setups
// without Redis. Entries are forgotten after ttl.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemory remembers ids for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, seen: map[string]time.Time{}}
}

func (m *Memory) Seen(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, at := range m.seen {
		if now.Sub(at) > m.ttl {
			delete(m.seen, k)
		}
	}
	if _, ok := m.seen[id]; ok {
		return true
	}
	m.seen[id] = now
	return false
}
