package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"salvo-backend/internal/model"
)

// Session is what we remember about a user between messages.
type Session struct {
	Location      *model.GeoPoint `json:"location,omitempty"`
	PendingSearch string          `json:"pending_search,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SessionStore keeps sessions by phone number. Load returns a zero Session
// for unknown or expired users.
type SessionStore interface {
	Load(ctx context.Context, phone string) (Session, error)
	Save(ctx context.Context, phone string, s Session) error
}

// RedisSessions stores each session as JSON under session:<phone>, expiring
// ttl after the last save.
type RedisSessions struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessions(rdb redis.Cmdable, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func sessionKey(phone string) string { return "session:" + phone }

func (r *RedisSessions) Load(ctx context.Context, phone string) (Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "load session")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, errors.Wrap(err, "decode session")
	}
	return s, nil
}

func (r *RedisSessions) Save(ctx context.Context, phone string, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := r.rdb.Set(ctx, sessionKey(phone), data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

// MemorySessions is an in-process SessionStore with the same expiry rule.
type MemorySessions struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]Session
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{ttl: ttl, now: time.Now, items: map[string]Session{}}
}

func (m *MemorySessions) Load(_ context.Context, phone string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[phone]
	if !ok {
		return Session{}, nil
	}
	if m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.items, phone)
		return Session{}, nil
	}
	return s, nil
}

func (m *MemorySessions) Save(_ context.Context, phone string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = m.now()
	m.items[phone] = s
	return nil
}
