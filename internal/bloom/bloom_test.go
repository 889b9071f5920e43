package bloom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var _ Doer = (*redis.Client)(nil)

// fakeBloom answers BF.RESERVE and BF.ADD through Do.
type fakeBloom struct {
	items map[string]bool
	resp3 bool
	err   error
	calls [][]interface{}
}

func (f *fakeBloom) Do(ctx context.Context, args ...interface{}) *redis.Cmd {
	f.calls = append(f.calls, args)
	cmd := redis.NewCmd(ctx, args...)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	switch args[0] {
	case "BF.RESERVE":
		cmd.SetVal("OK")
	case "BF.ADD":
		id := args[2].(string)
		added := !f.items[id]
		f.items[id] = true
		switch {
		case f.resp3:
			cmd.SetVal(added)
		case added:
			cmd.SetVal(int64(1))
		default:
			cmd.SetVal(int64(0))
		}
	}
	return cmd
}

func TestFilter_Seen(t *testing.T) {
	for _, resp3 := range []bool{false, true} {
		fake := &fakeBloom{items: map[string]bool{}, resp3: resp3}
		f := New(context.Background(), fake, "", zerolog.Nop())

		assert.Equal(t, "BF.RESERVE", fake.calls[0][0])
		assert.Equal(t, DefaultKey, fake.calls[0][1])

		assert.False(t, f.Seen(context.Background(), "wamid.1"))
		assert.True(t, f.Seen(context.Background(), "wamid.1"))
		assert.False(t, f.Seen(context.Background(), "wamid.2"))
		assert.False(t, f.Seen(context.Background(), ""))
	}
}

func TestFilter_RedisDownIsNotSeen(t *testing.T) {
	fake := &fakeBloom{items: map[string]bool{}, err: errors.New("connection refused")}
	f := New(context.Background(), fake, "k", zerolog.Nop())

	assert.False(t, f.Seen(context.Background(), "wamid.1"))
	assert.False(t, f.Seen(context.Background(), "wamid.1"))
}

func TestMemory_Seen(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	assert.False(t, m.Seen(context.Background(), "a"))
	assert.True(t, m.Seen(context.Background(), "a"))

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Seen(context.Background(), "a"))
}
