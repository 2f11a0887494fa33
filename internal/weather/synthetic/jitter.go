package synthetic

import (
	"math"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// Jitter 对演示快照做小幅扰动：每个数值在 ±1% 内变化，并保持原有的上下限。
// 温度可以为负，不做下限处理。
func (g *Generator) Jitter(c model.CurrentConditions) model.CurrentConditions {
	g.mu.Lock()
	defer g.mu.Unlock()

	c.Temperature = round1(c.Temperature + g.delta(c.Temperature))
	c.Humidity = round1(clamp(g.vary(c.Humidity), 0, HumidityMax))
	c.LightIntensity = round1(math.Min(LightMax, g.vary(c.LightIntensity)))
	c.WindSpeed = round1(g.vary(c.WindSpeed))
	c.Pressure = round1(math.Max(PressureMin, g.vary(c.Pressure)))
	c.Rainfall = round1(g.vary(c.Rainfall))
	c.UVIndex = round1(math.Min(UVMax, g.vary(c.UVIndex)))
	c.ObservedAt = g.clock.Now().In(g.loc)
	return c
}

// JitterHistory 对每条序列的每个点做同样的扰动，序列长度与时间不变。
func (g *Generator) JitterHistory(h model.History) model.History {
	g.mu.Lock()
	defer g.mu.Unlock()

	h.Temperature = g.jitterSeries(h.Temperature, math.Inf(-1), math.Inf(1))
	h.Humidity = g.jitterSeries(h.Humidity, 0, HumidityMax)
	h.Light = g.jitterSeries(h.Light, 0, LightMax)
	h.WindSpeed = g.jitterSeries(h.WindSpeed, 0, math.Inf(1))
	h.Pressure = g.jitterSeries(h.Pressure, PressureMin, math.Inf(1))
	h.Rainfall = g.jitterSeries(h.Rainfall, 0, math.Inf(1))
	h.UVIndex = g.jitterSeries(h.UVIndex, 0, UVMax)
	return h
}

// JitterDay 扰动一整天的演示数据。各序列最后一个点与扰动后的当前值保持一致。
func (g *Generator) JitterDay(d Day) Day {
	d.Current = g.Jitter(d.Current)
	d.History = g.JitterHistory(d.History)

	c := d.Current
	setLatest(d.History.Temperature, c.Temperature)
	setLatest(d.History.Humidity, c.Humidity)
	setLatest(d.History.Light, c.LightIntensity)
	setLatest(d.History.WindSpeed, c.WindSpeed)
	setLatest(d.History.Pressure, c.Pressure)
	setLatest(d.History.Rainfall, c.Rainfall)
	setLatest(d.History.UVIndex, c.UVIndex)
	return d
}

func setLatest(ts model.TimeSeries, v float64) {
	if len(ts) > 0 {
		ts[len(ts)-1].Value = v
	}
}

func (g *Generator) jitterSeries(ts model.TimeSeries, lo, hi float64) model.TimeSeries {
	if ts == nil {
		return nil
	}
	out := make(model.TimeSeries, len(ts))
	for i, p := range ts {
		p.Value = round1(clamp(p.Value+g.delta(p.Value), lo, hi))
		out[i] = p
	}
	return out
}

// vary 扰动非负量，结果不小于 0。
func (g *Generator) vary(v float64) float64 {
	return math.Max(0, v+g.delta(v))
}

func (g *Generator) delta(v float64) float64 {
	return (g.rnd.Float64() - 0.5) * v * jitterSpread
}
