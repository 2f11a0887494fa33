package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	redisopts "github.com/kart-io/sentinel-weather/pkg/options/redis"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

// DefaultKeyPrefix 默认快照键前缀
const DefaultKeyPrefix = "sentinel-weather:snapshot:"

// RedisStore 基于 Redis 的快照存储，多实例部署时共享最近一次成功快照。
type RedisStore struct {
	client    goredis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ SnapshotStore = (*RedisStore)(nil)

// NewRedisStore 使用已有客户端创建存储，ttl<=0 表示不过期。
func NewRedisStore(client goredis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// NewRedisClient 按配置创建客户端并 Ping 验证连通性。
func NewRedisClient(ctx context.Context, opts *redisopts.Options) (*goredis.Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis options cannot be nil")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.Database,
		MaxRetries:   opts.MaxRetries,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", opts.Addr(), err)
	}
	return rdb, nil
}

func (s *RedisStore) key(city string) string {
	return s.keyPrefix + normalizeCity(city)
}

// Get 读取快照，损坏的数据会被删除并视为未命中。
func (s *RedisStore) Get(ctx context.Context, city string) (model.CurrentConditions, bool, error) {
	var c model.CurrentConditions
	key := s.key(city)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return c, false, nil
		}
		return c, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		logger.Warnw("discarding corrupt snapshot", "key", key, "error", err.Error())
		_ = s.client.Del(ctx, key).Err()
		return model.CurrentConditions{}, false, nil
	}
	return c, true, nil
}

// Put 写入快照。
func (s *RedisStore) Put(ctx context.Context, city string, c model.CurrentConditions) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := s.key(city)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", key, err)
	}
	return nil
}

// Ping 检查 Redis 连通性。
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Clear 删除当前前缀下的全部快照。
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete snapshot key", "key", iter.Val(), "error", err.Error())
			continue
		}
		deleted++
	}
	return deleted, iter.Err()
}
