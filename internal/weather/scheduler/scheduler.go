// Package scheduler 以显式生命周期运行周期任务，例如定时刷新与演示数据扰动。
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	ctxlog "github.com/kart-io/sentinel-weather/pkg/infra/logger"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
)

// Task 周期任务。同一任务的上一次执行未结束时，本次触发被跳过。
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
	// RunOnStart 启动时立即执行一次
	RunOnStart bool
}

type entry struct {
	Task
	inFlight atomic.Bool
}

// Scheduler 周期任务调度器。任务在 pool 中执行，pool 为 nil 时使用独立 goroutine。
type Scheduler struct {
	clock   clockwork.Clock
	pool    *pool.Pool
	metrics *metrics.WeatherMetrics

	mu      sync.Mutex
	entries []*entry
	cancel  context.CancelFunc
	loops   sync.WaitGroup
	runs    sync.WaitGroup
}

// New 创建调度器。
func New(p *pool.Pool, clock clockwork.Clock, m *metrics.WeatherMetrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, pool: p, metrics: m}
}

// Add 注册任务，必须在 Start 之前调用。
func (s *Scheduler) Add(t Task) error {
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("scheduler: task requires a name and a run func")
	}
	if t.Interval <= 0 {
		return fmt.Errorf("scheduler: task %s has non-positive interval %s", t.Name, t.Interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("scheduler: cannot add task %s after start", t.Name)
	}
	s.entries = append(s.entries, &entry{Task: t})
	return nil
}

// Start 启动全部任务，ctx 取消或调用 Stop 时结束。
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("scheduler: already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.entries {
		ticker := s.clock.NewTicker(e.Interval)
		s.loops.Add(1)
		go s.loop(ctx, e, ticker)
		logger.Infow("scheduled task started", "task", e.Name, "interval", e.Interval.String())
	}
	return nil
}

// Stop 停止调度并等待正在执行的任务结束。停止后可以再次 Start。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.loops.Wait()
	s.runs.Wait()
	s.cancel = nil
	logger.Infow("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, e *entry, ticker clockwork.Ticker) {
	defer s.loops.Done()
	defer ticker.Stop()

	if e.RunOnStart {
		s.trigger(ctx, e)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.trigger(ctx, e)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context, e *entry) {
	if !e.inFlight.CompareAndSwap(false, true) {
		logger.Debugw("scheduled task still running, tick skipped", "task", e.Name)
		return
	}

	s.runs.Add(1)
	run := func() {
		defer s.runs.Done()
		defer e.inFlight.Store(false)
		s.execute(ctx, e)
	}

	if s.pool == nil {
		go run()
		return
	}
	if err := s.pool.Submit(run); err != nil {
		s.runs.Done()
		e.inFlight.Store(false)
		logger.Warnw("scheduled task rejected by pool", "task", e.Name, "error", err.Error())
		s.metrics.RecordTask(e.Name, err)
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Errorw("scheduled task panicked", "task", e.Name, "error", err.Error())
			s.metrics.RecordTask(e.Name, err)
		}
	}()

	if ctx.Err() != nil {
		return
	}
	start := s.clock.Now()
	err := e.Run(ctxlog.WithFields(ctx, "task", e.Name))
	s.metrics.RecordTask(e.Name, err)
	if err != nil {
		logger.Warnw("scheduled task failed", "task", e.Name, "error", err.Error())
		return
	}
	logger.Debugw("scheduled task finished", "task", e.Name, "took", s.clock.Since(start).String())
}
