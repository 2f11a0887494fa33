package biz

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/store"
	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
)

type fakeSensor struct {
	latest  model.SensorReading
	history []model.SensorReading
	err     error
	calls   atomic.Int32
	lastHrs atomic.Int32
}

func (f *fakeSensor) Name() string { return "fake-sensor" }

func (f *fakeSensor) Latest(context.Context) (model.SensorReading, error) {
	f.calls.Add(1)
	return f.latest, f.err
}

func (f *fakeSensor) History(_ context.Context, hours int) ([]model.SensorReading, error) {
	f.calls.Add(1)
	f.lastHrs.Store(int32(hours))
	return f.history, f.err
}

type fakeAmbient struct {
	reading model.AmbientReading
	err     error
	calls   atomic.Int32
}

func (f *fakeAmbient) Name() string { return "fake-ambient" }

func (f *fakeAmbient) Current(_ context.Context, city string) (model.AmbientReading, error) {
	f.calls.Add(1)
	r := f.reading
	r.City = city
	return r, f.err
}

type fakeForecast struct {
	points []model.ForecastPoint
	err    error
}

func (f *fakeForecast) Name() string { return "fake-forecast" }

func (f *fakeForecast) Forecast(context.Context, string) ([]model.ForecastPoint, error) {
	return f.points, f.err
}

var observed = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func liveSensor() *fakeSensor {
	return &fakeSensor{latest: model.SensorReading{
		EntryID:     42,
		CreatedAt:   observed,
		Temperature: model.Float(24.3),
		Humidity:    model.Float(58),
		Light:       model.Float(760),
		Pressure:    model.Float(1008.4),
		Rainfall:    model.Float(0),
	}}
}

func liveAmbient() *fakeAmbient {
	return &fakeAmbient{reading: model.AmbientReading{
		Temperature: model.Float(25.1),
		Humidity:    model.Float(61),
		Pressure:    model.Float(1009),
		WindSpeed:   model.Float(14.4),
		Rainfall:    model.Float(0.6),
		UVIndex:     model.Float(6),
		WeatherID:   500,
		Description: "小雨",
	}}
}

func newService(t *testing.T, sources Sources, cfg Config) (*WeatherService, *metrics.WeatherMetrics) {
	t.Helper()
	if cfg.City == "" {
		cfg.City = "hefei"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	m := metrics.New()
	workers, err := pool.NewPool("biz-test", pool.AdvisoryPool, nil)
	require.NoError(t, err)
	t.Cleanup(workers.Release)

	svc := NewWeatherService(Deps{
		Sources:   sources,
		Generator: synthetic.New(synthetic.WithSeed(7), synthetic.WithClock(clockwork.NewFakeClockAt(observed)), synthetic.WithLocation(time.UTC)),
		Store:     store.NewMemoryStore(0, nil),
		Workers:   workers,
		Metrics:   m,
	}, cfg)
	return svc, m
}

func TestCurrent_BothSourcesLive(t *testing.T) {
	sensor, ambient := liveSensor(), liveAmbient()
	svc, m := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{})
	ctx := context.Background()

	c := svc.Current(ctx, "")
	assert.Equal(t, model.ProvenanceLive, c.Provenance)
	assert.Equal(t, 24.3, c.Temperature)
	assert.Equal(t, 14.4, c.WindSpeed)
	assert.Equal(t, 0.6, c.Rainfall)
	assert.Equal(t, "小雨", c.WeatherDescription)
	assert.True(t, c.ObservedAt.Equal(observed))

	again := svc.Current(ctx, "HEFEI")
	assert.Equal(t, c, again)
	assert.Equal(t, int32(1), sensor.calls.Load())
	assert.Equal(t, int32(1), ambient.calls.Load())

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats["reconciles"].(map[string]uint64)["live"])
	assert.Equal(t, uint64(1), stats["sources"].(map[string]uint64)["fake-sensor/ok"])
}

func TestCurrent_SensorMisconfiguredServesDemo(t *testing.T) {
	ambient := liveAmbient()
	svc, _ := newService(t, Sources{Ambient: ambient}, Config{})

	c := svc.Current(context.Background(), "")
	assert.Equal(t, model.ProvenanceDemo, c.Provenance)
	assert.NoError(t, c.Validate())
}

func TestCurrent_SensorTransientFallsBackToAmbient(t *testing.T) {
	sensor := liveSensor()
	sensor.err = errors.ErrSourceTransient.WithMessage("connection reset")
	svc, m := newService(t, Sources{Sensor: sensor, Ambient: liveAmbient()}, Config{})

	c := svc.Current(context.Background(), "")
	assert.Equal(t, model.ProvenanceLive, c.Provenance)
	assert.Equal(t, 25.1, c.Temperature)
	assert.Equal(t, 0.0, c.LightIntensity)
	assert.Equal(t, uint64(1), m.Stats()["reconciles"].(map[string]uint64)["partial"])
	assert.Equal(t, uint64(1), m.Stats()["sources"].(map[string]uint64)["fake-sensor/transient"])
}

func TestCurrent_AllSourcesFailServesDemo(t *testing.T) {
	sensor := liveSensor()
	sensor.err = errors.ErrSourceNotFound
	ambient := liveAmbient()
	ambient.err = errors.ErrSourceMalformed
	svc, m := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{})

	c := svc.Current(context.Background(), "")
	assert.Equal(t, model.ProvenanceDemo, c.Provenance)
	assert.NoError(t, c.Validate())
	assert.Equal(t, uint64(1), m.Stats()["reconciles"].(map[string]uint64)["demo"])
}

func TestCurrent_DemoModeSkipsSources(t *testing.T) {
	sensor, ambient := liveSensor(), liveAmbient()
	svc, _ := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{Demo: true})

	c := svc.Current(context.Background(), "")
	assert.Equal(t, model.ProvenanceDemo, c.Provenance)
	assert.Zero(t, sensor.calls.Load())
	assert.Zero(t, ambient.calls.Load())
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	sensor, ambient := liveSensor(), liveAmbient()
	svc, _ := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{})
	ctx := context.Background()

	first := svc.Current(ctx, "")
	sensor.latest.Temperature = model.Float(30)
	require.NoError(t, svc.Refresh(ctx))

	second := svc.Current(ctx, "")
	assert.Equal(t, 24.3, first.Temperature)
	assert.Equal(t, 30.0, second.Temperature)
}

func TestDemoTick(t *testing.T) {
	ctx := context.Background()

	t.Run("jitters demo snapshot", func(t *testing.T) {
		svc, _ := newService(t, Sources{}, Config{Demo: true})
		before := svc.Current(ctx, "")
		require.NoError(t, svc.DemoTick(ctx))
		after := svc.Current(ctx, "")

		assert.Equal(t, model.ProvenanceDemo, after.Provenance)
		assert.InDelta(t, before.Pressure, after.Pressure, before.Pressure*0.011)
		assert.InDelta(t, before.Humidity, after.Humidity, before.Humidity*0.011+0.1)
		assert.NoError(t, after.Validate())
	})

	t.Run("leaves live snapshot untouched", func(t *testing.T) {
		svc, _ := newService(t, Sources{Sensor: liveSensor(), Ambient: liveAmbient()}, Config{})
		before := svc.Current(ctx, "")
		require.NoError(t, svc.DemoTick(ctx))
		assert.Equal(t, before, svc.Current(ctx, ""))
	})

	t.Run("healthy sources are not replaced by demo data", func(t *testing.T) {
		sensor, ambient := liveSensor(), liveAmbient()
		svc, _ := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{})
		require.NoError(t, svc.DemoTick(ctx))

		_, ok, err := svc.store.Get(ctx, "hefei")
		require.NoError(t, err)
		assert.False(t, ok)

		c := svc.Current(ctx, "")
		assert.Equal(t, model.ProvenanceLive, c.Provenance)
		assert.Equal(t, 24.3, c.Temperature)
		assert.Equal(t, int32(1), sensor.calls.Load())
		assert.Equal(t, int32(1), ambient.calls.Load())
	})

	t.Run("seeds an empty store", func(t *testing.T) {
		svc, _ := newService(t, Sources{}, Config{Demo: true})
		require.NoError(t, svc.DemoTick(ctx))
		c, ok, err := svc.store.Get(ctx, "hefei")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.ProvenanceDemo, c.Provenance)
	})
}

func assertCurrentIsHistoryTail(t *testing.T, c model.CurrentConditions, h model.History) {
	t.Helper()
	tail := func(ts model.TimeSeries) float64 {
		v, ok := ts.Latest()
		require.True(t, ok)
		return v
	}
	assert.Equal(t, tail(h.Temperature), c.Temperature)
	assert.Equal(t, tail(h.Humidity), c.Humidity)
	assert.Equal(t, tail(h.Light), c.LightIntensity)
	assert.Equal(t, tail(h.WindSpeed), c.WindSpeed)
	assert.Equal(t, tail(h.Pressure), c.Pressure)
	assert.Equal(t, tail(h.Rainfall), c.Rainfall)
	assert.Equal(t, tail(h.UVIndex), c.UVIndex)
}

func TestDemoData_CurrentMatchesHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("demo mode", func(t *testing.T) {
		svc, _ := newService(t, Sources{}, Config{Demo: true})
		c := svc.Current(ctx, "")
		h := svc.History(ctx, 24)
		assertCurrentIsHistoryTail(t, c, h)

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.DemoTick(ctx))
			next := svc.Current(ctx, "")
			nextHistory := svc.History(ctx, 24)
			assertCurrentIsHistoryTail(t, next, nextHistory)
			assert.Equal(t, h.Temperature[0].Time, nextHistory.Temperature[0].Time)
		}
	})

	t.Run("all sources failing", func(t *testing.T) {
		sensor := liveSensor()
		sensor.err = errors.ErrSourceNotFound
		ambient := liveAmbient()
		ambient.err = errors.ErrSourceTransient
		svc, _ := newService(t, Sources{Sensor: sensor, Ambient: ambient}, Config{})

		c := svc.Current(ctx, "")
		require.Equal(t, model.ProvenanceDemo, c.Provenance)
		h := svc.History(ctx, 24)
		require.Equal(t, model.ProvenanceDemo, h.Provenance)
		assertCurrentIsHistoryTail(t, c, h)

		require.NoError(t, svc.DemoTick(ctx))
		assertCurrentIsHistoryTail(t, svc.Current(ctx, ""), svc.History(ctx, 24))
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("sensor failure serves synthetic", func(t *testing.T) {
		sensor := liveSensor()
		sensor.err = errors.ErrSourceTransient
		svc, _ := newService(t, Sources{Sensor: sensor}, Config{})

		h := svc.History(ctx, 0)
		assert.Equal(t, model.ProvenanceDemo, h.Provenance)
		assert.Len(t, h.Temperature, synthetic.Points)
		assert.Equal(t, int32(DefaultHistoryHours), sensor.lastHrs.Load())
	})

	t.Run("live readings", func(t *testing.T) {
		sensor := liveSensor()
		for i := 0; i < 6; i++ {
			at := observed.Add(time.Duration(i) * 10 * time.Minute)
			sensor.history = append(sensor.history, model.SensorReading{
				EntryID:     i,
				CreatedAt:   at,
				Temperature: model.Float(20 + float64(i)),
				Humidity:    model.Float(50),
				Light:       model.Float(500),
				Pressure:    model.Float(1010),
				Rainfall:    model.Float(0),
				UVIndex:     model.Float(3),
			})
		}
		svc, _ := newService(t, Sources{Sensor: sensor, Ambient: liveAmbient()}, Config{})

		h := svc.History(ctx, 1000)
		assert.Equal(t, model.ProvenanceLive, h.Provenance)
		assert.Equal(t, int32(MaxHistoryHours), sensor.lastHrs.Load())
		require.NotEmpty(t, h.Temperature)
		for _, p := range h.Humidity {
			assert.Equal(t, 50.0, p.Value)
		}
	})

	t.Run("demo mode", func(t *testing.T) {
		sensor := liveSensor()
		svc, _ := newService(t, Sources{Sensor: sensor}, Config{Demo: true})
		h := svc.History(ctx, 24)
		assert.Equal(t, model.ProvenanceDemo, h.Provenance)
		assert.Zero(t, sensor.calls.Load())
	})
}

func TestForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("live points are aggregated", func(t *testing.T) {
		start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		var points []model.ForecastPoint
		for i := 0; i < 3*8; i++ {
			points = append(points, model.ForecastPoint{
				Time:        start.Add(time.Duration(i*3) * time.Hour),
				Temperature: 18 + float64(i%8),
				Humidity:    60,
				Pop:         0.2,
				WeatherID:   801,
				WindSpeed:   3,
				WindDeg:     90,
			})
		}
		svc, m := newService(t, Sources{Forecast: &fakeForecast{points: points}}, Config{})

		out := svc.Forecast(ctx, "")
		assert.Equal(t, ForecastSourceLive, out.Source)
		assert.Len(t, out.Days, 3)
		assert.Equal(t, uint64(1), m.Stats()["forecasts"].(map[string]uint64)[ForecastSourceLive])
	})

	t.Run("failure serves mock week", func(t *testing.T) {
		svc, _ := newService(t, Sources{Forecast: &fakeForecast{err: errors.ErrSourceMisconfigured}}, Config{})
		out := svc.Forecast(ctx, "beijing")
		assert.Equal(t, ForecastSourceMock, out.Source)
		assert.Len(t, out.Days, synthetic.ForecastDays)
	})

	t.Run("empty list serves mock week", func(t *testing.T) {
		svc, _ := newService(t, Sources{Forecast: &fakeForecast{}}, Config{})
		out := svc.Forecast(ctx, "")
		assert.Equal(t, ForecastSourceMock, out.Source)
	})

	t.Run("no forecast source", func(t *testing.T) {
		svc, _ := newService(t, Sources{}, Config{})
		assert.Equal(t, ForecastSourceMock, svc.Forecast(ctx, "").Source)
	})
}

func TestAdvisoriesWithoutProviderUseHeuristics(t *testing.T) {
	svc, _ := newService(t, Sources{}, Config{})
	c := model.CurrentConditions{
		Temperature: 33, Humidity: 40, WindSpeed: 5, Pressure: 1015,
		Provenance: model.ProvenanceLive, ObservedAt: observed,
	}

	all := svc.AdviseAll(context.Background(), c)
	assert.Equal(t, model.SourceHeuristic, all.Prediction.Source)
	assert.Equal(t, model.SourceHeuristic, all.Travel.Source)
	assert.Equal(t, model.SourceHeuristic, all.Probability.Source)
	assert.Equal(t, model.ReasonTemperature, all.Travel.Reason)
	assert.Equal(t, all.Travel, svc.Travel(context.Background(), c))
}
