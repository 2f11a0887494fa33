package source

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/errors"
)

// RateLimited 以令牌桶限制对同一上游的请求速率，可包装多个数据源共享同一配额。
type RateLimited struct {
	limiter *rate.Limiter
}

// NewRateLimited 创建限流器。perSecond <= 0 表示不限流。
func NewRateLimited(perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return errors.ErrSourceTransient.WithMessage("rate limit wait aborted").WithCause(err)
	}
	return nil
}

// Sensor 包装传感器数据源。
func (r *RateLimited) Sensor(s SensorSource) SensorSource {
	return &limitedSensor{rl: r, next: s}
}

// Ambient 包装公共天气数据源。
func (r *RateLimited) Ambient(a AmbientSource) AmbientSource {
	return &limitedAmbient{rl: r, next: a}
}

// Forecast 包装预报数据源。
func (r *RateLimited) Forecast(f ForecastSource) ForecastSource {
	return &limitedForecast{rl: r, next: f}
}

type limitedSensor struct {
	rl   *RateLimited
	next SensorSource
}

func (l *limitedSensor) Name() string { return l.next.Name() }

func (l *limitedSensor) Latest(ctx context.Context) (model.SensorReading, error) {
	if err := l.rl.wait(ctx); err != nil {
		return model.SensorReading{}, err
	}
	return l.next.Latest(ctx)
}

func (l *limitedSensor) History(ctx context.Context, hours int) ([]model.SensorReading, error) {
	if err := l.rl.wait(ctx); err != nil {
		return nil, err
	}
	return l.next.History(ctx, hours)
}

type limitedAmbient struct {
	rl   *RateLimited
	next AmbientSource
}

func (l *limitedAmbient) Name() string { return l.next.Name() }

func (l *limitedAmbient) Current(ctx context.Context, city string) (model.AmbientReading, error) {
	if err := l.rl.wait(ctx); err != nil {
		return model.AmbientReading{}, err
	}
	return l.next.Current(ctx, city)
}

type limitedForecast struct {
	rl   *RateLimited
	next ForecastSource
}

func (l *limitedForecast) Name() string { return l.next.Name() }

func (l *limitedForecast) Forecast(ctx context.Context, city string) ([]model.ForecastPoint, error) {
	if err := l.rl.wait(ctx); err != nil {
		return nil, err
	}
	return l.next.Forecast(ctx, city)
}
