// Package logger 提供带请求上下文字段的结构化日志。
package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/sentinel-weather/pkg/infra/middleware/common"
)

type contextKey int

const loggerFieldsKey contextKey = iota

// WithFields 向 ctx 追加日志字段，参数为键值对，奇数个时忽略最后一个。
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	if len(keysAndValues)%2 != 0 {
		keysAndValues = keysAndValues[:len(keysAndValues)-1]
	}
	if len(keysAndValues) == 0 {
		return ctx
	}

	prev, _ := ctx.Value(loggerFieldsKey).([]interface{})
	fields := make([]interface{}, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, loggerFieldsKey, fields)
}

// Fields 返回 ctx 中的日志字段：request_id、trace_id、span_id 以及 WithFields 附加的字段。
func Fields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}

	var fields []interface{}
	if id := common.GetRequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	if extra, ok := ctx.Value(loggerFieldsKey).([]interface{}); ok {
		fields = append(fields, extra...)
	}
	return fields
}
