// Package store 保存每个城市最近一次成功对账的天气快照。
package store

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/cache"
)

// SnapshotStore 最近一次成功快照的存取接口。
// 快照最多过期一个刷新周期，读取方可以接受这种滞后。
type SnapshotStore interface {
	Get(ctx context.Context, city string) (model.CurrentConditions, bool, error)
	Put(ctx context.Context, city string, c model.CurrentConditions) error
}

// normalizeCity 城市名大小写与首尾空白不影响键。
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// MemoryStore 进程内快照存储。
type MemoryStore struct {
	cache *cache.MemoryCache[string, model.CurrentConditions]
}

var _ SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore 创建进程内存储，ttl<=0 表示不过期。
func NewMemoryStore(ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	opts := []cache.Option{cache.WithTTL(ttl)}
	if clock != nil {
		opts = append(opts, cache.WithClock(clock))
	}
	return &MemoryStore{cache: cache.NewMemoryCache[string, model.CurrentConditions](opts...)}
}

// Get 返回未过期的快照。
func (s *MemoryStore) Get(_ context.Context, city string) (model.CurrentConditions, bool, error) {
	c, ok := s.cache.Get(normalizeCity(city))
	return c, ok, nil
}

// Put 覆盖城市快照。
func (s *MemoryStore) Put(_ context.Context, city string, c model.CurrentConditions) error {
	s.cache.Set(normalizeCity(city), c)
	return nil
}

// Len 当前快照数量
func (s *MemoryStore) Len() int { return s.cache.Len() }
