package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

func sampleConditions() model.CurrentConditions {
	return model.CurrentConditions{
		Temperature:        21.5,
		Humidity:           64,
		LightIntensity:     830,
		WindSpeed:          12.6,
		Pressure:           1011.2,
		Rainfall:           0.4,
		UVIndex:            5,
		WeatherDescription: "多云",
		Provenance:         model.ProvenanceLive,
		ObservedAt:         time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(0, nil)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "Beijing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleConditions()
	require.NoError(t, s.Put(ctx, "Beijing", want))

	got, ok, err := s.Get(ctx, "  beijing ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_ExpiresAfterRefreshInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewMemoryStore(10*time.Minute, clock)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Shanghai", sampleConditions()))

	clock.Advance(9 * time.Minute)
	_, ok, _ := s.Get(ctx, "Shanghai")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = s.Get(ctx, "Shanghai")
	assert.False(t, ok)
}

// setupTestRedis 需要设置 REDIS_ADDR，否则跳过。
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR 未设置，跳过 Redis 测试")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis 不可用: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_PutGet(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	s := NewRedisStore(client, "test:weather:snapshot:", time.Minute)
	t.Cleanup(func() { _, _ = s.Clear(ctx) })

	_, ok, err := s.Get(ctx, "Hangzhou")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleConditions()
	require.NoError(t, s.Put(ctx, "Hangzhou", want))

	got, ok, err := s.Get(ctx, "HANGZHOU")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Temperature, got.Temperature)
	assert.Equal(t, want.Provenance, got.Provenance)
	assert.True(t, want.ObservedAt.Equal(got.ObservedAt))

	ttl, err := client.TTL(ctx, "test:weather:snapshot:hangzhou").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_CorruptPayloadIsMiss(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	s := NewRedisStore(client, "test:weather:snapshot:", 0)
	t.Cleanup(func() { _, _ = s.Clear(ctx) })

	require.NoError(t, client.Set(ctx, "test:weather:snapshot:xian", "{not json", 0).Err())

	_, ok, err := s.Get(ctx, "Xian")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := client.Exists(ctx, "test:weather:snapshot:xian").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
