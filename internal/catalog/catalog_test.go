package catalog

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvo-backend/internal/model"
)

func ptr(f float64) *float64 { return &f }

const sampleDoc = `{
  "sellers": [
    {"id": "s1", "nome": "Farmácia Central", "categoria": "Farmácia", "status": "active", "latitude": -23.55, "longitude": -46.63},
    {"id": "s2", "nome": "Broken", "categoria": "Mercado", "status": "active", "latitude": "not-a-number", "longitude": -46.6},
    {"id": "s3", "nome": "Sem Local", "categoria": "Padaria", "status": "active"}
  ]
}`

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "sellers.json")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestFileSource_MissingFileIsEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	snap, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestFileSource_Malformed(t *testing.T) {
	src := NewFileSource(writeFile(t, t.TempDir(), `{"sellers": [`))
	_, err := src.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFileSource_PerRecordDecode(t *testing.T) {
	src := NewFileSource(writeFile(t, t.TempDir(), sampleDoc))
	snap, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, snap.Len())

	entries := snap.Entries()

	rec, err := entries[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "Farmácia Central", rec.Name)
	assert.True(t, rec.Active())
	assert.True(t, rec.Located())

	_, err = entries[1].Decode()
	assert.Error(t, err, "a bad latitude fails only its own record")

	rec, err = entries[2].Decode()
	require.NoError(t, err)
	assert.False(t, rec.Located())
}

func TestFileSource_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sellers.json")
	src := NewFileSource(path)
	ctx := context.Background()

	rec := model.BusinessRecord{
		ID: "b1", Name: "Pizzaria Bella", Category: "Pizzaria", Status: model.StatusActive,
		Latitude: ptr(-23.5), Longitude: ptr(-46.6),
	}
	require.NoError(t, src.Append(ctx, rec))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	got, err := snap.Entries()[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "Pizzaria Bella", got.Name)
	assert.NotEmpty(t, got.CreatedAt)

	err = src.Append(ctx, rec)
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = src.Append(ctx, model.BusinessRecord{ID: "b2"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestFileSource_ConcurrentAppends(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "sellers.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := model.BusinessRecord{
				ID: string(rune('a' + i)), Name: "Loja", Category: "Mercado", Status: model.StatusActive,
			}
			assert.NoError(t, src.Append(ctx, rec))
		}(i)
	}
	wg.Wait()

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Len())
}

func TestCheckRecord(t *testing.T) {
	tests := []struct {
		name   string
		rec    model.BusinessRecord
		ok     bool
		reason string
	}{
		{"searchable", model.BusinessRecord{Status: "active", Latitude: ptr(1), Longitude: ptr(2)}, true, ""},
		{"inactive", model.BusinessRecord{Status: "inactive", Latitude: ptr(1), Longitude: ptr(2)}, false, "status not active"},
		{"no lng", model.BusinessRecord{Status: "active", Latitude: ptr(1)}, false, "coordinates missing"},
		{"nan", model.BusinessRecord{Status: "active", Latitude: ptr(math.NaN()), Longitude: ptr(2)}, false, "coordinates not finite"},
		{"range", model.BusinessRecord{Status: "active", Latitude: ptr(91), Longitude: ptr(2)}, false, "coordinates out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CheckRecord(tt.rec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSnapshot_MarshalRoundTrip(t *testing.T) {
	snap, err := FromRecords(
		model.BusinessRecord{ID: "a", Name: "A"},
		model.BusinessRecord{ID: "b", Name: "B"},
	)
	require.NoError(t, err)

	data, err := snap.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 2, again.Len())
	rec, err := again.Entries()[1].Decode()
	require.NoError(t, err)
	assert.Equal(t, "b", rec.ID)
}

func TestSnapshot_NilIsEmpty(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Entries())
}

// fakeRedis implements the two commands RedisSource uses. Any other call
// panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data   map[string][]byte
	getErr error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = v
	case string:
		f.data[key] = []byte(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func TestRedisSource(t *testing.T) {
	ctx := context.Background()
	rdb := &fakeRedis{data: map[string][]byte{}}
	src := NewRedisSource(rdb, "")

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len(), "missing key is an empty catalog")

	seed, err := FromRecords(model.BusinessRecord{ID: "r1", Name: "Padaria"})
	require.NoError(t, err)
	require.NoError(t, src.Publish(ctx, seed))
	assert.Contains(t, rdb.data, DefaultRedisKey)

	snap, err = src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
}

func TestRedisSource_Errors(t *testing.T) {
	ctx := context.Background()

	down := NewRedisSource(&fakeRedis{getErr: errors.New("connection refused")}, "k")
	_, err := down.Snapshot(ctx)
	assert.Error(t, err)

	bad := NewRedisSource(&fakeRedis{data: map[string][]byte{"k": []byte("{")}}, "k")
	_, err = bad.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrMalformed)
}
