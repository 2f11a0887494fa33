package reconcile

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
	"github.com/kart-io/sentinel-weather/pkg/errors"
)

// 回退原因
const (
	CauseSensorConfig = "sensor-config"
	CauseAllFailed    = "all-sources-failed"
	CauseNoHistory    = "no-history"
)

// Input 同一时刻两路数据源的抓取结果。Err 非 nil 时对应读数被忽略。
type Input struct {
	Sensor     model.SensorReading
	SensorErr  error
	Ambient    model.AmbientReading
	AmbientErr error
}

// Result 对账结果。
type Result struct {
	Conditions  model.CurrentConditions
	SensorUsed  bool
	AmbientUsed bool
	// FallbackCause 非空表示结果来自合成数据。
	FallbackCause string
}

// DaySource 提供回退用的演示数据，*synthetic.Generator 每次生成新的一天。
type DaySource interface {
	Generate() synthetic.Day
}

// Engine 对账引擎。除合成数据外不持有可变状态。
type Engine struct {
	gen   DaySource
	clock clockwork.Clock
	loc   *time.Location
}

// NewEngine 创建对账引擎。loc 为历史分桶所用时区，nil 表示本地时区。
func NewEngine(gen DaySource, clock clockwork.Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{gen: gen, clock: clock, loc: loc}
}

// Reconcile 合并一次抓取结果。
//
// 传感器返回配置类错误时直接使用合成数据；任一数据源可用时降级为部分实时数据；
// 两者均不可用时使用合成数据。
func (e *Engine) Reconcile(in Input) Result {
	if errors.IsSourceConfigError(in.SensorErr) {
		return e.synthetic(CauseSensorConfig)
	}

	var sensor *model.SensorReading
	if in.SensorErr == nil && usableSensor(in.Sensor) {
		sensor = &in.Sensor
	}
	var ambient *model.AmbientReading
	if in.AmbientErr == nil {
		ambient = &in.Ambient
	}
	if sensor == nil && ambient == nil {
		return e.synthetic(CauseAllFailed)
	}

	c := Merge(sensor, ambient)
	if c.ObservedAt.IsZero() {
		c.ObservedAt = e.clock.Now()
	}
	return Result{
		Conditions:  c,
		SensorUsed:  sensor != nil,
		AmbientUsed: ambient != nil,
	}
}

func (e *Engine) synthetic(cause string) Result {
	return Result{
		Conditions:    e.gen.Generate().Current,
		FallbackCause: cause,
	}
}

// ReconcileHistory 转换历史读数。抓取失败或窗口内没有读数时整体使用合成序列。
func (e *Engine) ReconcileHistory(readings []model.SensorReading, err error, ambient *model.AmbientReading) HistoryResult {
	fallback := e.gen.Generate().History
	if err != nil || len(readings) == 0 {
		cause := CauseNoHistory
		if errors.IsSourceConfigError(err) {
			cause = CauseSensorConfig
		}
		return HistoryResult{History: fallback, FallbackCause: cause}
	}
	return MergeHistory(readings, ambient, fallback, e.loc)
}
