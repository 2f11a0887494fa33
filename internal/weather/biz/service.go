// Package biz 编排数据源抓取、对账、快照与建议生成。
package biz

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/sentinel-weather/internal/weather/advisory"
	"github.com/kart-io/sentinel-weather/internal/weather/forecast"
	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/reconcile"
	"github.com/kart-io/sentinel-weather/internal/weather/source"
	"github.com/kart-io/sentinel-weather/internal/weather/store"
	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	ctxlog "github.com/kart-io/sentinel-weather/pkg/infra/logger"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
	"github.com/kart-io/sentinel-weather/pkg/infra/tracing"
)

// 预报来源标记
const (
	ForecastSourceLive = "openweather"
	ForecastSourceMock = "mock"
)

// 对账模式，用于指标
const (
	modeLive    = "live"
	modePartial = "partial"
	modeDemo    = "demo"
)

const (
	// DefaultHistoryHours 默认历史窗口
	DefaultHistoryHours = 24
	// MaxHistoryHours 历史窗口上限
	MaxHistoryHours = 7 * 24
)

// ForecastResult 多日预报及其来源。
type ForecastResult struct {
	Days   []model.ForecastDay `json:"data"`
	Source string              `json:"source"`
}

// Service 天气业务接口。所有读取操作都会返回可用结果，数据源失败时降级为演示数据。
type Service interface {
	Current(ctx context.Context, city string) model.CurrentConditions
	History(ctx context.Context, hours int) model.History
	Forecast(ctx context.Context, city string) ForecastResult
	// Refresh 重新抓取默认城市并写入快照。
	Refresh(ctx context.Context) error
	// DemoTick 扰动默认城市的演示快照。
	DemoTick(ctx context.Context) error

	Prediction(ctx context.Context, c model.CurrentConditions) model.PredictionResult
	Travel(ctx context.Context, c model.CurrentConditions) model.TravelAdvice
	Probability(ctx context.Context, c model.CurrentConditions) model.ProbabilityForecast
	AdviseAll(ctx context.Context, c model.CurrentConditions) model.Advisories
}

// Sources 数据源集合，未配置的数据源为 nil。
type Sources struct {
	Sensor   source.SensorSource
	Ambient  source.AmbientSource
	Forecast source.ForecastSource
}

// Config 服务配置。
type Config struct {
	// City 默认城市
	City string
	// Demo 强制演示模式
	Demo bool
	// Location 历史分桶与预报汇总时区
	Location *time.Location
}

// WeatherService 默认实现。
type WeatherService struct {
	sources  Sources
	engine   *reconcile.Engine
	gen      *synthetic.Generator
	demo     *demoDay
	store    store.SnapshotStore
	advisors *advisory.Service
	workers  *pool.Pool
	metrics  *metrics.WeatherMetrics
	config   Config
}

var _ Service = (*WeatherService)(nil)

// Deps 服务依赖。
type Deps struct {
	Sources   Sources
	Generator *synthetic.Generator
	Store     store.SnapshotStore
	Advisors  *advisory.Service
	// Workers 并发抓取两路数据源，nil 时顺序抓取
	Workers *pool.Pool
	Metrics *metrics.WeatherMetrics
}

// NewWeatherService 创建天气服务。
func NewWeatherService(deps Deps, cfg Config) *WeatherService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	gen := deps.Generator
	if gen == nil {
		gen = synthetic.New(synthetic.WithLocation(cfg.Location))
	}
	st := deps.Store
	if st == nil {
		st = store.NewMemoryStore(0, nil)
	}
	advisors := deps.Advisors
	if advisors == nil {
		advisors = advisory.NewService(nil, nil, advisory.Config{Metrics: deps.Metrics})
	}
	demo := newDemoDay(gen)
	return &WeatherService{
		sources:  deps.Sources,
		engine:   reconcile.NewEngine(demo, nil, cfg.Location),
		gen:      gen,
		demo:     demo,
		store:    st,
		advisors: advisors,
		workers:  deps.Workers,
		metrics:  deps.Metrics,
		config:   cfg,
	}
}

func (s *WeatherService) city(city string) string {
	if c := strings.TrimSpace(city); c != "" {
		return c
	}
	return s.config.City
}

// Current 返回城市当前气象数据。快照未过期时直接返回快照，演示快照取共享的演示数据。
func (s *WeatherService) Current(ctx context.Context, city string) model.CurrentConditions {
	city = s.city(city)
	ctx, span := tracing.StartSpan(ctx, "weather.current", attribute.String(tracing.AttrCity, city))
	defer span.End()

	c, ok, err := s.store.Get(ctx, city)
	if err != nil {
		ctxlog.Warnw(ctx, "snapshot lookup failed", "city", city, "error", err.Error())
	}
	s.metrics.RecordSnapshot(ok)
	switch {
	case ok && c.Provenance == model.ProvenanceDemo:
		c = s.demo.Generate().Current
	case !ok:
		c = s.fetch(ctx, city)
		s.save(ctx, city, c)
	}

	span.SetAttributes(attribute.String(tracing.AttrProvenance, string(c.Provenance)))
	return c
}

// Refresh 重新抓取默认城市。
func (s *WeatherService) Refresh(ctx context.Context) error {
	city := s.config.City
	ctx, span := tracing.StartSpan(ctx, "weather.refresh", attribute.String(tracing.AttrCity, city))
	defer span.End()

	c := s.fetch(ctx, city)
	span.SetAttributes(attribute.String(tracing.AttrProvenance, string(c.Provenance)))
	if err := s.store.Put(ctx, city, c); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}
	ctxlog.Infow(ctx, "weather refreshed", "city", city, "provenance", c.Provenance)
	return nil
}

// DemoTick 扰动演示数据并写回默认城市的快照。
// 实时快照保持不变；非演示模式下快照缺失时交给下一次 Current 抓取。
func (s *WeatherService) DemoTick(ctx context.Context) error {
	city := s.config.City
	c, ok, err := s.store.Get(ctx, city)
	if err != nil {
		return err
	}
	if ok && c.Provenance != model.ProvenanceDemo {
		return nil
	}
	if !ok && !s.config.Demo {
		return nil
	}
	day := s.demo.Jitter()
	return s.store.Put(ctx, city, day.Current)
}

// fetch 抓取两路数据源并对账。
func (s *WeatherService) fetch(ctx context.Context, city string) model.CurrentConditions {
	if s.config.Demo {
		s.metrics.RecordReconcile(modeDemo)
		return s.demo.Generate().Current
	}

	var in reconcile.Input
	tasks := []func(){
		func() { in.Sensor, in.SensorErr = s.latestSensor(ctx) },
		func() { in.Ambient, in.AmbientErr = s.currentAmbient(ctx, city) },
	}
	if s.workers != nil {
		s.workers.Go(tasks...)
	} else {
		for _, task := range tasks {
			task()
		}
	}

	res := s.engine.Reconcile(in)
	switch {
	case res.FallbackCause != "":
		s.metrics.RecordReconcile(modeDemo)
		tracing.AddSpanEvent(ctx, "fallback", attribute.String(tracing.AttrFallbackCause, res.FallbackCause))
		ctxlog.Warnw(ctx, "serving synthetic conditions", "city", city, "cause", res.FallbackCause,
			"sensor_error", errText(in.SensorErr), "ambient_error", errText(in.AmbientErr))
	case res.SensorUsed && res.AmbientUsed:
		s.metrics.RecordReconcile(modeLive)
	default:
		s.metrics.RecordReconcile(modePartial)
		ctxlog.Infow(ctx, "serving partial live conditions", "city", city,
			"sensor_used", res.SensorUsed, "ambient_used", res.AmbientUsed)
	}
	return res.Conditions
}

func (s *WeatherService) save(ctx context.Context, city string, c model.CurrentConditions) {
	if err := s.store.Put(ctx, city, c); err != nil {
		ctxlog.Warnw(ctx, "failed to store snapshot", "city", city, "error", err.Error())
	}
}

func (s *WeatherService) latestSensor(ctx context.Context) (model.SensorReading, error) {
	if s.sources.Sensor == nil {
		return model.SensorReading{}, errors.ErrSourceMisconfigured.WithMessage("sensor source not configured")
	}
	r, err := s.sources.Sensor.Latest(ctx)
	s.recordFetch(ctx, s.sources.Sensor.Name(), err)
	return r, err
}

func (s *WeatherService) currentAmbient(ctx context.Context, city string) (model.AmbientReading, error) {
	if s.sources.Ambient == nil {
		return model.AmbientReading{}, errors.ErrSourceMisconfigured.WithMessage("ambient source not configured")
	}
	r, err := s.sources.Ambient.Current(ctx, city)
	s.recordFetch(ctx, s.sources.Ambient.Name(), err)
	return r, err
}

func (s *WeatherService) recordFetch(ctx context.Context, name string, err error) {
	kind := errors.FetchKind(err)
	s.metrics.RecordFetch(name, kind)
	if err != nil {
		tracing.AddSpanEvent(ctx, "source.error",
			attribute.String(tracing.AttrSourceName, name),
			attribute.String(tracing.AttrFetchKind, kind),
		)
		ctxlog.Warnw(ctx, "source fetch failed", "source", name, "kind", kind, "error", err.Error())
	}
}

// History 返回最近 hours 小时的时间序列，hours 超出范围时取默认值或上限。
func (s *WeatherService) History(ctx context.Context, hours int) model.History {
	switch {
	case hours <= 0:
		hours = DefaultHistoryHours
	case hours > MaxHistoryHours:
		hours = MaxHistoryHours
	}
	ctx, span := tracing.StartSpan(ctx, "weather.history", attribute.Int(tracing.AttrHistoryHours, hours))
	defer span.End()

	if s.config.Demo {
		h := s.demo.Generate().History
		span.SetAttributes(attribute.String(tracing.AttrProvenance, string(h.Provenance)))
		return h
	}

	var (
		readings []model.SensorReading
		err      error
	)
	if s.sources.Sensor == nil {
		err = errors.ErrSourceMisconfigured.WithMessage("sensor source not configured")
	} else {
		readings, err = s.sources.Sensor.History(ctx, hours)
		s.recordFetch(ctx, s.sources.Sensor.Name(), err)
	}

	var ambient *model.AmbientReading
	if err == nil && s.sources.Ambient != nil {
		if a, aerr := s.sources.Ambient.Current(ctx, s.config.City); aerr == nil {
			ambient = &a
		} else {
			s.recordFetch(ctx, s.sources.Ambient.Name(), aerr)
		}
	}

	res := s.engine.ReconcileHistory(readings, err, ambient)
	if res.FallbackCause != "" {
		ctxlog.Warnw(ctx, "serving synthetic history", "hours", hours, "cause", res.FallbackCause, "error", errText(err))
		span.SetAttributes(attribute.String(tracing.AttrFallbackCause, res.FallbackCause))
	} else if len(res.SyntheticFields) > 0 {
		ctxlog.Infow(ctx, "history fields filled with synthetic series", "fields", res.SyntheticFields)
	}
	span.SetAttributes(attribute.String(tracing.AttrProvenance, string(res.History.Provenance)))
	return res.History
}

// Forecast 返回多日预报。预报源不可用或没有数据时返回模拟预报。
func (s *WeatherService) Forecast(ctx context.Context, city string) ForecastResult {
	city = s.city(city)
	ctx, span := tracing.StartSpan(ctx, "weather.forecast", attribute.String(tracing.AttrCity, city))
	defer span.End()

	out := s.forecast(ctx, city)
	s.metrics.RecordForecast(out.Source)
	span.SetAttributes(attribute.String(tracing.AttrForecastSrc, out.Source))
	return out
}

func (s *WeatherService) forecast(ctx context.Context, city string) ForecastResult {
	mock := func() ForecastResult {
		return ForecastResult{Days: s.gen.WeeklyForecast(), Source: ForecastSourceMock}
	}
	if s.config.Demo || s.sources.Forecast == nil {
		return mock()
	}

	points, err := s.sources.Forecast.Forecast(ctx, city)
	s.recordFetch(ctx, s.sources.Forecast.Name(), err)
	if err != nil {
		return mock()
	}
	days := forecast.Aggregate(points, s.config.Location)
	if len(days) == 0 {
		ctxlog.Warnw(ctx, "forecast source returned no points", "city", city)
		return mock()
	}
	if len(days) > synthetic.ForecastDays {
		days = days[:synthetic.ForecastDays]
	}
	return ForecastResult{Days: days, Source: ForecastSourceLive}
}

// Prediction 趋势预测。
func (s *WeatherService) Prediction(ctx context.Context, c model.CurrentConditions) model.PredictionResult {
	return s.advisors.Prediction(ctx, c)
}

// Travel 出行建议。
func (s *WeatherService) Travel(ctx context.Context, c model.CurrentConditions) model.TravelAdvice {
	return s.advisors.Travel(ctx, c)
}

// Probability 天气类型概率。
func (s *WeatherService) Probability(ctx context.Context, c model.CurrentConditions) model.ProbabilityForecast {
	return s.advisors.Probability(ctx, c)
}

// AdviseAll 并行生成三种建议。
func (s *WeatherService) AdviseAll(ctx context.Context, c model.CurrentConditions) model.Advisories {
	return s.advisors.AdviseAll(ctx, c)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
