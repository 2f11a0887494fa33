// Package model 定义天气对账与建议流水线的数据类型。
package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kart-io/sentinel-weather/pkg/errors"
)

// Provenance 标记一条记录来自真实数据源还是合成数据。
type Provenance string

const (
	ProvenanceLive Provenance = "live"
	ProvenanceDemo Provenance = "demo"
)

// Valid reports whether p is a known provenance.
func (p Provenance) Valid() bool {
	return p == ProvenanceLive || p == ProvenanceDemo
}

// CurrentConditions 当前气象状况。
// Humidity 与 Rainfall 永不为负；Provenance 总是被设置。
type CurrentConditions struct {
	Temperature        float64    `json:"temperature"`
	Humidity           float64    `json:"humidity"`
	LightIntensity     float64    `json:"lightIntensity"`
	WindSpeed          float64    `json:"windSpeed"`
	Pressure           float64    `json:"pressure"`
	Rainfall           float64    `json:"rainfall"`
	UVIndex            float64    `json:"uvIndex"`
	WeatherDescription string     `json:"weatherDescription,omitempty"`
	Provenance         Provenance `json:"provenance"`
	ObservedAt         time.Time  `json:"observedAt"`
}

// Validate 校验字段取值范围。
func (c CurrentConditions) Validate() error {
	if !c.Provenance.Valid() {
		return errors.ErrReadingMissingField.WithMessagef("provenance %q is not one of live, demo", c.Provenance)
	}

	fields := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"temperature", c.Temperature, -90, 70},
		{"humidity", c.Humidity, 0, 100},
		{"lightIntensity", c.LightIntensity, 0, math.MaxFloat64},
		{"windSpeed", c.WindSpeed, 0, 500},
		{"pressure", c.Pressure, 0, 1200},
		{"rainfall", c.Rainfall, 0, 500},
		{"uvIndex", c.UVIndex, 0, 20},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.ErrReadingOutOfRange.WithMessagef("%s is not a finite number", f.name)
		}
		if f.value < f.min || f.value > f.max {
			return errors.ErrReadingOutOfRange.WithMessage(fmt.Sprintf("%s=%g outside [%g, %g]", f.name, f.value, f.min, f.max))
		}
	}
	return nil
}

// TimeSeriesPoint 时间序列中的一个点。Label 为 "HH:00" 形式的展示标签。
type TimeSeriesPoint struct {
	Time  time.Time `json:"timestamp"`
	Label string    `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeries 按时间排序的点序列。
type TimeSeries []TimeSeriesPoint

// Sort 按时间稳定排序。
func (ts TimeSeries) Sort() {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Time.Before(ts[j].Time)
	})
}

// Latest 返回最后一个点的值，空序列返回 0,false。
func (ts TimeSeries) Latest() (float64, bool) {
	if len(ts) == 0 {
		return 0, false
	}
	return ts[len(ts)-1].Value, true
}

// History 近若干小时的各指标序列。
type History struct {
	Temperature TimeSeries `json:"temperature"`
	Humidity    TimeSeries `json:"humidity"`
	Light       TimeSeries `json:"light"`
	Pressure    TimeSeries `json:"pressure"`
	Rainfall    TimeSeries `json:"rainfall"`
	UVIndex     TimeSeries `json:"uvIndex"`
	WindSpeed   TimeSeries `json:"windSpeed"`
	Provenance  Provenance `json:"provenance"`
}

// HourLabel 返回 "HH:00" 标签。
func HourLabel(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.Hour())
}
