// Package synthetic 生成物理上合理的演示数据，用于离线或数据源不可用时。
package synthetic

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// Points 每条序列的点数（逐小时，24 小时窗口）。
const Points = 24

// 上下限
const (
	HumidityMin  = 30.0
	HumidityMax  = 100.0
	PressureMin  = 990.0
	UVMax        = 12.0
	LightMax     = 1200.0
	rainChance   = 0.2
	rainMax      = 5.0
	jitterSpread = 0.02
)

// Generator 合成数据生成器。随机源与时钟可注入，测试中结果可复现。
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	clock clockwork.Clock
	loc   *time.Location
}

// Option 配置 Generator。
type Option func(*Generator)

// WithRand 指定随机源。
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// WithSeed 使用固定种子。
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithClock 指定时钟。
func WithClock(c clockwork.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithLocation 指定计算小时所用的时区。
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// New 创建生成器。
func New(opts ...Option) *Generator {
	g := &Generator{
		clock: clockwork.NewRealClock(),
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(g.clock.Now().UnixNano()))
	}
	return g
}

// Day 一整天的演示数据。Current 的各字段取自对应序列的最后一个点。
type Day struct {
	Current model.CurrentConditions
	History model.History
}

// Generate 生成截至当前小时的 24 小时序列与当前快照。
func (g *Generator) Generate() Day {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().In(g.loc)
	slots := hourSlots(now)

	temp := g.temperatureSeries(slots)
	h := model.History{
		Temperature: temp,
		Humidity:    g.humiditySeries(temp),
		WindSpeed:   g.hourlySeries(slots, 10, 5, 0),
		Pressure:    g.hourlySeries(slots, 1013, 5, PressureMin),
		Rainfall:    g.rainfallSeries(slots),
		UVIndex:     g.daylightSeries(slots, 10, UVMax, 2, round1),
		Light:       g.daylightSeries(slots, 1000, LightMax, 200, math.Round),
		Provenance:  model.ProvenanceDemo,
	}

	last := func(ts model.TimeSeries) float64 {
		v, _ := ts.Latest()
		return v
	}

	return Day{
		History: h,
		Current: model.CurrentConditions{
			Temperature:        last(h.Temperature),
			Humidity:           last(h.Humidity),
			LightIntensity:     last(h.Light),
			WindSpeed:          last(h.WindSpeed),
			Pressure:           last(h.Pressure),
			Rainfall:           last(h.Rainfall),
			UVIndex:            last(h.UVIndex),
			WeatherDescription: "演示数据",
			Provenance:         model.ProvenanceDemo,
			ObservedAt:         now,
		},
	}
}

// Current 仅返回当前快照。
func (g *Generator) Current() model.CurrentConditions {
	return g.Generate().Current
}

// History 仅返回 24 小时序列。
func (g *Generator) History() model.History {
	return g.Generate().History
}

// Fresh 演示数据的最后一个点仍落在当前小时。
func (g *Generator) Fresh(d Day) bool {
	ts := d.History.Temperature
	if len(ts) == 0 {
		return false
	}
	now := g.clock.Now().In(g.loc)
	return ts[len(ts)-1].Time.Equal(hourSlots(now)[Points-1])
}

// hourSlots 返回从 23 小时前到当前小时的整点时刻。
func hourSlots(now time.Time) []time.Time {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	slots := make([]time.Time, Points)
	for i := range slots {
		slots[i] = top.Add(-time.Duration(Points-1-i) * time.Hour)
	}
	return slots
}

func point(t time.Time, v float64) model.TimeSeriesPoint {
	return model.TimeSeriesPoint{Time: t, Label: model.HourLabel(t), Value: v}
}

// diurnalBase 凌晨最低，下午两点前后最高。
func diurnalBase(hour int) float64 {
	h := float64(hour)
	base := 20.0
	switch {
	case hour < 6:
		base -= 5 + (3-h)*0.5
	case hour < 12:
		base -= 3 - (h-6)*0.8
	case hour < 18:
		base += 3 - math.Abs(h-14)*0.5
	default:
		base -= (h - 18) * 0.6
	}
	return base
}

func (g *Generator) temperatureSeries(slots []time.Time) model.TimeSeries {
	ts := make(model.TimeSeries, len(slots))
	for i, t := range slots {
		ts[i] = point(t, round1(diurnalBase(t.Hour())+(g.rnd.Float64()-0.5)*2))
	}
	return ts
}

func (g *Generator) humiditySeries(temp model.TimeSeries) model.TimeSeries {
	ts := make(model.TimeSeries, len(temp))
	for i, p := range temp {
		v := 80 - (p.Value-15)*2 + (g.rnd.Float64()-0.5)*10
		ts[i] = point(p.Time, math.Round(clamp(v, HumidityMin, HumidityMax)))
	}
	return ts
}

// hourlySeries 围绕基线的平滑波动，保持相邻点的连续性。
func (g *Generator) hourlySeries(slots []time.Time, base, variance, floor float64) model.TimeSeries {
	ts := make(model.TimeSeries, len(slots))
	for i, t := range slots {
		v := base + math.Sin(float64(i)/4)*variance + (g.rnd.Float64()-0.5)*variance*0.5
		ts[i] = point(t, round1(math.Max(floor, v)))
	}
	return ts
}

func (g *Generator) rainfallSeries(slots []time.Time) model.TimeSeries {
	ts := make(model.TimeSeries, len(slots))
	for i, t := range slots {
		var v float64
		if g.rnd.Float64() < rainChance {
			v = round1(g.rnd.Float64() * rainMax)
		}
		ts[i] = point(t, v)
	}
	return ts
}

// daylightSeries 06:00 至 18:00 之间的半正弦曲线，其余时间为 0。
func (g *Generator) daylightSeries(slots []time.Time, peak, max, noise float64, rounder func(float64) float64) model.TimeSeries {
	ts := make(model.TimeSeries, len(slots))
	for i, t := range slots {
		var v float64
		if h := t.Hour(); h >= 6 && h <= 18 {
			v = math.Sin(float64(h-6)*math.Pi/12)*peak + (g.rnd.Float64()-0.5)*noise
			v = rounder(clamp(v, 0, max))
		}
		ts[i] = point(t, v)
	}
	return ts
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
