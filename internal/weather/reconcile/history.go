package reconcile

import (
	"sort"
	"time"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// HistoryResult 历史序列对账结果。
type HistoryResult struct {
	History model.History
	// SyntheticFields 被合成序列整体替换的字段。
	SyntheticFields []string
	FallbackCause   string
}

type fieldSpec struct {
	name    string
	sensor  func(model.SensorReading) *float64
	ambient *float64
	target  *model.TimeSeries
	backup  model.TimeSeries
}

// MergeHistory 将原始历史读数按小时分桶转换为时间序列。
//
// 每个桶内取传感器有限值的平均值，没有有效值时退回公共天气的当前值，
// 两者都没有则该桶不产生点。整个窗口内没有任何有效传感器值的字段
// 由 fallback 中对应的合成序列替换。输入可以乱序。
func MergeHistory(readings []model.SensorReading, ambient *model.AmbientReading, fallback model.History, loc *time.Location) HistoryResult {
	if loc == nil {
		loc = time.Local
	}
	var a model.AmbientReading
	if ambient != nil {
		a = *ambient
	}

	sorted := append([]model.SensorReading(nil), readings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var out model.History
	fields := []fieldSpec{
		{"temperature", func(r model.SensorReading) *float64 { return r.Temperature }, a.Temperature, &out.Temperature, fallback.Temperature},
		{"humidity", func(r model.SensorReading) *float64 { return r.Humidity }, a.Humidity, &out.Humidity, fallback.Humidity},
		{"light", func(r model.SensorReading) *float64 { return r.Light }, nil, &out.Light, fallback.Light},
		{"pressure", func(r model.SensorReading) *float64 { return r.Pressure }, a.Pressure, &out.Pressure, fallback.Pressure},
		{"rainfall", func(r model.SensorReading) *float64 { return r.Rainfall }, a.Rainfall, &out.Rainfall, fallback.Rainfall},
		{"uvIndex", func(r model.SensorReading) *float64 { return r.UVIndex }, a.UVIndex, &out.UVIndex, fallback.UVIndex},
		{"windSpeed", func(model.SensorReading) *float64 { return nil }, nil, &out.WindSpeed, fallback.WindSpeed},
	}

	res := HistoryResult{}
	liveFields := 0
	for _, f := range fields {
		series, valid := bucketize(sorted, f.sensor, f.ambient, loc)
		if valid == 0 {
			*f.target = append(model.TimeSeries(nil), f.backup...)
			res.SyntheticFields = append(res.SyntheticFields, f.name)
			continue
		}
		*f.target = series
		liveFields++
	}

	out.Provenance = model.ProvenanceLive
	if liveFields == 0 {
		out.Provenance = model.ProvenanceDemo
		res.FallbackCause = CauseNoHistory
	}
	res.History = out
	return res
}

type bucket struct {
	start time.Time
	sum   float64
	n     int
}

func bucketize(readings []model.SensorReading, get func(model.SensorReading) *float64, ambient *float64, loc *time.Location) (model.TimeSeries, int) {
	var buckets []*bucket
	index := make(map[int64]*bucket)
	valid := 0

	for _, r := range readings {
		if r.CreatedAt.IsZero() {
			continue
		}
		t := r.CreatedAt.In(loc)
		start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
		b, ok := index[start.Unix()]
		if !ok {
			b = &bucket{start: start}
			index[start.Unix()] = b
			buckets = append(buckets, b)
		}
		if v := get(r); finite(v) {
			b.sum += *v
			b.n++
			valid++
		}
	}

	ts := make(model.TimeSeries, 0, len(buckets))
	for _, b := range buckets {
		var v float64
		switch {
		case b.n > 0:
			v = round1(b.sum / float64(b.n))
		case finite(ambient):
			v = *ambient
		default:
			continue
		}
		ts = append(ts, model.TimeSeriesPoint{Time: b.start, Label: model.HourLabel(b.start), Value: v})
	}
	ts.Sort()
	return ts, valid
}
