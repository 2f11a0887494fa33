// Package advisory 通过远端模型生成天气建议，任何环节失败时回退到本地启发式结果。
//
// 每种建议的处理流程相同：调用模型 → 提取 JSON → 严格解码与校验 → 返回；
// 任一步骤失败都直接转入启发式计算，因此 Resolve 总会返回完整可用的结果。
package advisory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	ctxlog "github.com/kart-io/sentinel-weather/pkg/infra/logger"
	"github.com/kart-io/sentinel-weather/pkg/infra/tracing"
	"github.com/kart-io/sentinel-weather/pkg/llm"
)

// DefaultTimeout 远端调用超时。
const DefaultTimeout = 10 * time.Second

// 回退原因
const (
	CauseNoProvider = "no-provider"
	CauseRemote     = "remote-error"
	CauseTimeout    = "timeout"
	CauseNoJSON     = "no-json-found"
	CauseSchema     = "schema-mismatch"
)

// Kind 描述一种建议：如何构造提示词、如何解码校验模型响应、如何本地计算。
type Kind[T any] struct {
	Name         string
	SystemPrompt string
	BuildPrompt  func(model.CurrentConditions) string
	// Decode 严格解码 JSON 片段并校验，成功时结果的 Source 为 remote。
	Decode    func(raw []byte) (T, error)
	Heuristic func(model.CurrentConditions) T
}

// Outcome 一次解析的结果。Cause 非空时 Result 来自启发式计算，Err 为触发回退的错误。
type Outcome[T any] struct {
	Result T
	Source model.AdvisorySource
	Cause  string
	Err    error
}

// Config 解析器配置。
type Config struct {
	Timeout time.Duration
	Metrics *metrics.WeatherMetrics
}

// Resolver 单一建议种类的解析器。provider 为 nil 时总是使用启发式结果。
type Resolver[T any] struct {
	kind     Kind[T]
	provider llm.ChatProvider
	timeout  time.Duration
	metrics  *metrics.WeatherMetrics
}

// NewResolver 创建解析器。
func NewResolver[T any](kind Kind[T], provider llm.ChatProvider, cfg Config) *Resolver[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Resolver[T]{
		kind:     kind,
		provider: provider,
		timeout:  cfg.Timeout,
		metrics:  cfg.Metrics,
	}
}

// Kind 返回建议种类名称。
func (r *Resolver[T]) Kind() string {
	return r.kind.Name
}

// Resolve 解析一种建议，永不返回错误。
func (r *Resolver[T]) Resolve(ctx context.Context, c model.CurrentConditions) Outcome[T] {
	ctx, span := tracing.StartSpan(ctx, "advisory."+r.kind.Name,
		attribute.String(tracing.AttrAdvisoryKind, r.kind.Name),
		attribute.String(tracing.AttrProvenance, string(c.Provenance)),
	)
	defer span.End()

	out := r.resolve(ctx, c)

	span.SetAttributes(attribute.String(tracing.AttrAdvisorySrc, string(out.Source)))
	if out.Cause != "" {
		span.SetAttributes(attribute.String(tracing.AttrFallbackCause, out.Cause))
		if out.Err != nil {
			span.RecordError(out.Err)
		}
		ctxlog.Warnw(ctx, "advisory fell back to heuristic",
			"kind", r.kind.Name,
			"cause", out.Cause,
			"provenance", c.Provenance,
			"error", errString(out.Err),
		)
	}
	r.metrics.RecordAdvisory(r.kind.Name, string(out.Source), out.Cause)
	return out
}

func (r *Resolver[T]) resolve(ctx context.Context, c model.CurrentConditions) Outcome[T] {
	if r.provider == nil {
		return r.fallback(c, CauseNoProvider, nil)
	}

	start := time.Now()
	text, err := r.callRemote(ctx, r.kind.BuildPrompt(c))
	r.metrics.RecordLLMCall(time.Since(start), err)
	if err != nil {
		cause := CauseRemote
		if errors.Is(err, context.DeadlineExceeded) {
			cause = CauseTimeout
		}
		return r.fallback(c, cause, errors.ErrAdvisoryRemote.WithCause(err))
	}

	span, err := ExtractJSON(text)
	if err != nil {
		ctxlog.Debugw(ctx, "model reply contains no JSON", "kind", r.kind.Name, "reply", truncate(text, 200))
		return r.fallback(c, CauseNoJSON, err)
	}

	result, err := r.kind.Decode([]byte(span))
	if err != nil {
		return r.fallback(c, CauseSchema, err)
	}
	return Outcome[T]{Result: result, Source: model.SourceRemote}
}

// callRemote 在超时内等待模型响应。供应商忽略 ctx 时也不会阻塞调用方。
func (r *Resolver[T]) callRemote(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- reply{err: fmt.Errorf("provider %s panicked: %v", r.provider.Name(), rec)}
			}
		}()
		text, err := llm.GenerateWithRoles(ctx, r.provider, r.kind.SystemPrompt, prompt)
		ch <- reply{text: text, err: err}
	}()

	select {
	case rep := <-ch:
		return rep.text, rep.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Resolver[T]) fallback(c model.CurrentConditions, cause string, err error) Outcome[T] {
	return Outcome[T]{
		Result: r.kind.Heuristic(c),
		Source: model.SourceHeuristic,
		Cause:  cause,
		Err:    err,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
