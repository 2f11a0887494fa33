// Package source 定义气象数据源契约以及错误分类。
//
// 适配器的每个失败路径都返回四类错误之一：transient、not-found、
// misconfigured、malformed-response。适配器内部不做重试。
package source

import (
	"context"
	"net/http"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
)

// SensorSource 现场传感器数据源。
type SensorSource interface {
	Name() string
	// Latest 返回最新一次采样。
	Latest(ctx context.Context) (model.SensorReading, error)
	// History 返回最近 hours 小时内的采样。
	History(ctx context.Context, hours int) ([]model.SensorReading, error)
}

// AmbientSource 公共天气数据源。
type AmbientSource interface {
	Name() string
	Current(ctx context.Context, city string) (model.AmbientReading, error)
}

// ForecastSource 多日预报数据源。
type ForecastSource interface {
	Name() string
	Forecast(ctx context.Context, city string) ([]model.ForecastPoint, error)
}

// Classify 将传输层错误映射为数据源错误。已分类的错误原样返回。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []*errors.Errno{
		errors.ErrSourceTransient,
		errors.ErrSourceNotFound,
		errors.ErrSourceMisconfigured,
		errors.ErrSourceMalformed,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch code := statusErr.StatusCode; {
		case code == http.StatusNotFound:
			return errors.ErrSourceNotFound.WithCause(err)
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return errors.ErrSourceMisconfigured.WithCause(err)
		case code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500:
			return errors.ErrSourceTransient.WithCause(err)
		default:
			return errors.ErrSourceMisconfigured.WithCause(err)
		}
	}

	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) {
		return errors.ErrSourceMalformed.WithCause(err)
	}

	return errors.ErrSourceTransient.WithCause(err)
}
