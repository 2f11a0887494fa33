// Package pool 基于 ants 提供带统计的 goroutine 池。
package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// 提交失败原因
var (
	ErrPoolClosed   = errors.New("池已关闭")
	ErrPoolOverload = errors.New("池已满")
)

// Type 池类型。
type Type string

const (
	// AdvisoryPool 并发生成多种天气建议
	AdvisoryPool Type = "advisory"
	// SchedulerPool 定时刷新任务
	SchedulerPool Type = "scheduler"
)

// Config 池配置。
type Config struct {
	// Capacity 最大并发 goroutine 数
	Capacity int
	// ExpiryDuration goroutine 空闲过期时间
	ExpiryDuration time.Duration
	PreAlloc       bool
	// Nonblocking 池满时直接返回 ErrPoolOverload
	Nonblocking bool
	// MaxBlockingTasks 阻塞模式下最大等待任务数（0 表示无限制）
	MaxBlockingTasks int
	PanicHandler     func(interface{})
}

// AdvisoryPoolConfig 返回建议生成池配置
func AdvisoryPoolConfig() *Config {
	return &Config{
		Capacity:       32,
		ExpiryDuration: 30 * time.Second,
	}
}

// SchedulerPoolConfig 返回定时任务池配置
func SchedulerPoolConfig() *Config {
	return &Config{
		Capacity:         8,
		ExpiryDuration:   60 * time.Second,
		Nonblocking:      true,
		MaxBlockingTasks: 0,
	}
}

// ConfigFor 返回指定类型的默认配置
func ConfigFor(typ Type) *Config {
	if typ == SchedulerPool {
		return SchedulerPoolConfig()
	}
	return AdvisoryPoolConfig()
}

// Pool 带统计的 ants 池。
type Pool struct {
	name     string
	typ      Type
	pool     *ants.Pool
	config   *Config
	stats    poolStatsCounter
	closed   atomic.Bool
	closedMu sync.Mutex
}

type poolStatsCounter struct {
	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panics    atomic.Int64
	waitNs    atomic.Int64
}

// Stats 池统计信息快照。
type Stats struct {
	Name            string `json:"name"`
	Capacity        int    `json:"capacity"`
	Running         int    `json:"running"`
	SubmittedTasks  int64  `json:"submitted_tasks"`
	CompletedTasks  int64  `json:"completed_tasks"`
	RejectedTasks   int64  `json:"rejected_tasks"`
	PanicRecovered  int64  `json:"panic_recovered"`
	TotalWaitTimeNs int64  `json:"total_wait_time_ns"`
}

// NewPool 创建池。
func NewPool(name string, typ Type, config *Config) (*Pool, error) {
	if config == nil {
		config = ConfigFor(typ)
	}
	p := &Pool{name: name, typ: typ, config: config}

	pool, err := ants.NewPool(config.Capacity, p.antsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("创建 ants 池失败: %w", err)
	}
	p.pool = pool

	logger.Infow("Worker pool created", "name", name, "type", string(typ), "capacity", config.Capacity)
	return p, nil
}

func (p *Pool) antsOptions() []ants.Option {
	handler := p.config.PanicHandler
	if handler == nil {
		handler = func(v interface{}) {
			logger.Errorw("Worker panic recovered", "pool", p.name, "panic", v)
		}
	}
	return []ants.Option{
		ants.WithExpiryDuration(p.config.ExpiryDuration),
		ants.WithPreAlloc(p.config.PreAlloc),
		ants.WithNonblocking(p.config.Nonblocking),
		ants.WithMaxBlockingTasks(p.config.MaxBlockingTasks),
		ants.WithPanicHandler(func(v interface{}) {
			p.stats.panics.Add(1)
			handler(v)
		}),
	}
}

// Name 返回池名称
func (p *Pool) Name() string { return p.name }

// Type 返回池类型
func (p *Pool) Type() Type { return p.typ }

// Cap 返回池容量
func (p *Pool) Cap() int { return p.pool.Cap() }

// Running 返回正在运行的 goroutine 数量
func (p *Pool) Running() int { return p.pool.Running() }

// Submit 提交任务到池中执行
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	start := time.Now()
	p.stats.submitted.Add(1)
	err := p.pool.Submit(func() {
		p.stats.waitNs.Add(int64(time.Since(start)))
		task()
		p.stats.completed.Add(1)
	})
	if err != nil {
		p.stats.submitted.Add(-1)
		if errors.Is(err, ants.ErrPoolOverload) {
			p.stats.rejected.Add(1)
			return ErrPoolOverload
		}
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Go 并发执行全部任务并等待结束。
// 提交失败的任务在调用方 goroutine 中同步执行，保证每个任务都会运行。
func (p *Pool) Go(tasks ...func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		task := task
		run := func() {
			defer wg.Done()
			task()
		}
		if err := p.Submit(run); err != nil {
			logger.Debugw("pool submit failed, running inline", "pool", p.name, "error", err.Error())
			run()
		}
	}
	wg.Wait()
}

// Release 关闭池并释放资源
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Swap(true) {
		return
	}
	p.pool.Release()
	logger.Infow("Worker pool released", "name", p.name)
}

// ReleaseTimeout 等待运行中的任务完成，直到超时
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Swap(true) {
		return nil
	}
	return p.pool.ReleaseTimeout(timeout)
}

// Stats 返回池统计信息快照
func (p *Pool) Stats() Stats {
	return Stats{
		Name:            p.name,
		Capacity:        p.pool.Cap(),
		Running:         p.pool.Running(),
		SubmittedTasks:  p.stats.submitted.Load(),
		CompletedTasks:  p.stats.completed.Load(),
		RejectedTasks:   p.stats.rejected.Load(),
		PanicRecovered:  p.stats.panics.Load(),
		TotalWaitTimeNs: p.stats.waitNs.Load(),
	}
}
