// Package metrics 提供天气服务的业务指标收集。
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// counterSet 以标签为键的计数器集合。
type counterSet struct {
	mu sync.RWMutex
	m  map[string]*uint64
}

func (c *counterSet) inc(label string) {
	c.mu.RLock()
	p, ok := c.m[label]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if c.m == nil {
			c.m = make(map[string]*uint64)
		}
		if p, ok = c.m[label]; !ok {
			p = new(uint64)
			c.m[label] = p
		}
		c.mu.Unlock()
	}
	atomic.AddUint64(p, 1)
}

func (c *counterSet) snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.m))
	for k, p := range c.m {
		out[k] = atomic.LoadUint64(p)
	}
	return out
}

func (c *counterSet) reset() {
	c.mu.Lock()
	c.m = nil
	c.mu.Unlock()
}

// WeatherMetrics 天气服务业务指标。所有方法对 nil 接收者安全。
type WeatherMetrics struct {
	// 数据源抓取，标签 source/result
	fetches counterSet
	// 对账结果，标签 live/partial/demo
	reconciles counterSet
	// 建议结果，标签 kind/source
	advisories counterSet
	// 回退原因，标签 kind/cause
	fallbacks counterSet
	// 预报来源，标签 openweather/mock
	forecasts counterSet
	// 定时任务执行，标签 task/result
	tasks counterSet

	llmCallsTotal  uint64
	llmCallsErrors uint64
	snapshotHits   uint64
	snapshotMisses uint64

	durationMu  sync.Mutex
	llmDuration float64
	startTime   time.Time
}

var (
	defaultMetrics *WeatherMetrics
	defaultOnce    sync.Once
)

// New 创建独立的指标实例。
func New() *WeatherMetrics {
	return &WeatherMetrics{startTime: time.Now()}
}

// Default 返回进程级指标实例。
func Default() *WeatherMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// RecordFetch 记录一次数据源抓取，kind 为空表示成功。
func (m *WeatherMetrics) RecordFetch(source, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "ok"
	}
	m.fetches.inc(source + "/" + kind)
}

// RecordReconcile 记录对账结果。
func (m *WeatherMetrics) RecordReconcile(mode string) {
	if m == nil {
		return
	}
	m.reconciles.inc(mode)
}

// RecordAdvisory 记录一次建议结果及回退原因，cause 为空表示远端成功。
func (m *WeatherMetrics) RecordAdvisory(kind, source, cause string) {
	if m == nil {
		return
	}
	m.advisories.inc(kind + "/" + source)
	if cause != "" {
		m.fallbacks.inc(kind + "/" + cause)
	}
}

// RecordLLMCall 记录一次模型调用。
func (m *WeatherMetrics) RecordLLMCall(duration time.Duration, err error) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
	}
	m.durationMu.Lock()
	m.llmDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordSnapshot 记录快照缓存命中情况。
func (m *WeatherMetrics) RecordSnapshot(hit bool) {
	if m == nil {
		return
	}
	if hit {
		atomic.AddUint64(&m.snapshotHits, 1)
	} else {
		atomic.AddUint64(&m.snapshotMisses, 1)
	}
}

// RecordForecast 记录预报来源。
func (m *WeatherMetrics) RecordForecast(source string) {
	if m == nil {
		return
	}
	m.forecasts.inc(source)
}

// RecordTask 记录定时任务执行。
func (m *WeatherMetrics) RecordTask(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasks.inc(name + "/" + result)
}

// Export 导出 Prometheus 文本格式。
func (m *WeatherMetrics) Export(prefix string) string {
	if m == nil {
		return ""
	}
	if prefix == "" {
		prefix = "weather"
	}
	var sb strings.Builder

	writeLabeled(&sb, prefix+"_source_fetches_total", "Source fetches by source and result.", []string{"source", "result"}, m.fetches.snapshot())
	writeLabeled(&sb, prefix+"_reconciles_total", "Reconciliations by mode.", []string{"mode"}, m.reconciles.snapshot())
	writeLabeled(&sb, prefix+"_advisories_total", "Advisories by kind and source.", []string{"kind", "source"}, m.advisories.snapshot())
	writeLabeled(&sb, prefix+"_advisory_fallbacks_total", "Heuristic fallbacks by kind and cause.", []string{"kind", "cause"}, m.fallbacks.snapshot())
	writeLabeled(&sb, prefix+"_forecasts_total", "Forecasts by source.", []string{"source"}, m.forecasts.snapshot())
	writeLabeled(&sb, prefix+"_tasks_total", "Scheduled task runs by task and result.", []string{"task", "result"}, m.tasks.snapshot())

	m.durationMu.Lock()
	llmDuration := m.llmDuration
	m.durationMu.Unlock()

	writeScalar(&sb, prefix+"_llm_calls_total", "Total number of LLM calls.", "counter", fmt.Sprintf("%d", atomic.LoadUint64(&m.llmCallsTotal)))
	writeScalar(&sb, prefix+"_llm_calls_errors_total", "Number of LLM call errors.", "counter", fmt.Sprintf("%d", atomic.LoadUint64(&m.llmCallsErrors)))
	writeScalar(&sb, prefix+"_llm_calls_duration_seconds_total", "Total LLM call duration.", "counter", fmt.Sprintf("%.6f", llmDuration))
	writeScalar(&sb, prefix+"_snapshot_hits_total", "Snapshot cache hits.", "counter", fmt.Sprintf("%d", atomic.LoadUint64(&m.snapshotHits)))
	writeScalar(&sb, prefix+"_snapshot_misses_total", "Snapshot cache misses.", "counter", fmt.Sprintf("%d", atomic.LoadUint64(&m.snapshotMisses)))
	writeScalar(&sb, prefix+"_uptime_seconds", "Service uptime in seconds.", "gauge", fmt.Sprintf("%.2f", time.Since(m.startTime).Seconds()))

	return sb.String()
}

// ExportBreaker 导出 LLM 熔断器状态，当前状态为 1，其余为 0。
func ExportBreaker(prefix, state string, failures int) string {
	if prefix == "" {
		prefix = "weather"
	}
	var sb strings.Builder
	name := prefix + "_llm_breaker_state"
	fmt.Fprintf(&sb, "# HELP %s LLM circuit breaker state.\n", name)
	fmt.Fprintf(&sb, "# TYPE %s gauge\n", name)
	for _, s := range []string{"closed", "open", "half-open"} {
		v := 0
		if s == state {
			v = 1
		}
		fmt.Fprintf(&sb, "%s{state=%q} %d\n", name, s, v)
	}
	sb.WriteString("\n")
	writeScalar(&sb, prefix+"_llm_breaker_failures", "Consecutive LLM failures counted by the breaker.", "gauge", fmt.Sprintf("%d", failures))
	return sb.String()
}

func writeScalar(sb *strings.Builder, name, help, typ, value string) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s %s\n", name, typ)
	fmt.Fprintf(sb, "%s %s\n\n", name, value)
}

func writeLabeled(sb *strings.Builder, name, help string, labels []string, values map[string]uint64) {
	fmt.Fprintf(sb, "# HELP %s %s\n", name, help)
	fmt.Fprintf(sb, "# TYPE %s counter\n", name)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		parts := strings.SplitN(k, "/", len(labels))
		pairs := make([]string, 0, len(labels))
		for i, l := range labels {
			v := ""
			if i < len(parts) {
				v = parts[i]
			}
			pairs = append(pairs, fmt.Sprintf("%s=%q", l, v))
		}
		fmt.Fprintf(sb, "%s{%s} %d\n", name, strings.Join(pairs, ","), values[k])
	}
	sb.WriteString("\n")
}

// Stats 返回当前统计信息（用于 API）。
func (m *WeatherMetrics) Stats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	m.durationMu.Lock()
	llmDuration := m.llmDuration
	m.durationMu.Unlock()

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLM := 0.0
	if llmTotal > 0 {
		avgLLM = llmDuration / float64(llmTotal)
	}

	hits := atomic.LoadUint64(&m.snapshotHits)
	misses := atomic.LoadUint64(&m.snapshotMisses)
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	return map[string]interface{}{
		"sources":    m.fetches.snapshot(),
		"reconciles": m.reconciles.snapshot(),
		"advisories": m.advisories.snapshot(),
		"fallbacks":  m.fallbacks.snapshot(),
		"forecasts":  m.forecasts.snapshot(),
		"tasks":      m.tasks.snapshot(),
		"llm": map[string]interface{}{
			"calls_total":         llmTotal,
			"errors":              atomic.LoadUint64(&m.llmCallsErrors),
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLM,
		},
		"snapshot": map[string]interface{}{
			"hits":     hits,
			"misses":   misses,
			"hit_rate": hitRate,
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset 重置所有指标（仅用于测试）。
func (m *WeatherMetrics) Reset() {
	m.fetches.reset()
	m.reconciles.reset()
	m.advisories.reset()
	m.fallbacks.reset()
	m.forecasts.reset()
	m.tasks.reset()
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.snapshotHits, 0)
	atomic.StoreUint64(&m.snapshotMisses, 0)

	m.durationMu.Lock()
	m.llmDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
