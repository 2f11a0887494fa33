// Package reconcile 将传感器读数与公共天气观测合并为一条当前气象记录。
package reconcile

import (
	"math"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// Merge 按字段优先级合并两路读数，nil 表示该数据源未返回。
//
//   - 温度、湿度、气压：传感器有限值 → 公共天气 → 0
//   - 光照：仅传感器
//   - 风速、紫外线：仅公共天气
//   - 降雨：传感器值大于 0 时取传感器，否则取公共天气，再否则为 0
//
// 湿度、降雨及其他非负量不会为负。Merge 是纯函数，结果的 Provenance 为 live。
func Merge(sensor *model.SensorReading, ambient *model.AmbientReading) model.CurrentConditions {
	var s model.SensorReading
	if sensor != nil {
		s = *sensor
	}
	var a model.AmbientReading
	if ambient != nil {
		a = *ambient
	}

	c := model.CurrentConditions{
		Temperature:        first(s.Temperature, a.Temperature),
		Humidity:           nonNegative(first(s.Humidity, a.Humidity)),
		LightIntensity:     nonNegative(first(s.Light)),
		WindSpeed:          nonNegative(first(a.WindSpeed)),
		Pressure:           first(s.Pressure, a.Pressure),
		Rainfall:           nonNegative(rainfall(s.Rainfall, a.Rainfall)),
		UVIndex:            nonNegative(first(a.UVIndex)),
		WeatherDescription: a.Description,
		Provenance:         model.ProvenanceLive,
		ObservedAt:         s.CreatedAt,
	}
	return c
}

// rainfall 任一数据源报告降雨即视为有雨。
func rainfall(sensor, ambient *float64) float64 {
	if finite(sensor) && *sensor > 0 {
		return *sensor
	}
	return first(ambient, sensor)
}

func first(values ...*float64) float64 {
	for _, v := range values {
		if finite(v) {
			return *v
		}
	}
	return 0
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func nonNegative(v float64) float64 {
	return math.Max(0, v)
}

// usableSensor 至少有一个字段是有限值。
func usableSensor(s model.SensorReading) bool {
	for _, v := range []*float64{s.Temperature, s.Humidity, s.Light, s.Pressure, s.Rainfall, s.UVIndex} {
		if finite(v) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
