package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 数据源错误。适配器返回的每个错误都属于以下四类之一。
var (
	ErrSourceTransient     = Register(New(MakeCode(ServiceThirdPartyWeather, CategoryNetwork, 1), http.StatusServiceUnavailable, codes.Unavailable, "Weather source temporarily unavailable", "数据源暂时不可用"))
	ErrSourceNotFound      = Register(New(MakeCode(ServiceThirdPartyWeather, CategoryResource, 1), http.StatusNotFound, codes.NotFound, "Weather source channel not found", "数据源频道不存在"))
	ErrSourceMisconfigured = Register(New(MakeCode(ServiceThirdPartyWeather, CategoryConfig, 1), http.StatusInternalServerError, codes.FailedPrecondition, "Weather source misconfigured", "数据源配置错误"))
	ErrSourceMalformed     = Register(New(MakeCode(ServiceThirdPartyWeather, CategoryInternal, 1), http.StatusBadGateway, codes.DataLoss, "Weather source returned a malformed response", "数据源响应格式错误"))
)

// 模型响应解析错误。
var (
	ErrAdvisoryNoJSON = Register(New(MakeCode(ServiceThirdPartyLLM, CategoryInternal, 1), http.StatusBadGateway, codes.DataLoss, "No JSON object found in model reply", "模型响应中未找到 JSON"))
	ErrAdvisorySchema = Register(New(MakeCode(ServiceThirdPartyLLM, CategoryInternal, 2), http.StatusBadGateway, codes.DataLoss, "Model reply does not match the advisory schema", "模型响应不符合约定格式"))
	ErrAdvisoryRemote = Register(New(MakeCode(ServiceThirdPartyLLM, CategoryNetwork, 1), http.StatusBadGateway, codes.Unavailable, "Language model call failed", "模型调用失败"))
)

// 读数校验错误。
var (
	ErrReadingOutOfRange   = Register(New(MakeCode(ServiceWeather, CategoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "Reading out of range", "读数超出范围"))
	ErrReadingMissingField = Register(New(MakeCode(ServiceWeather, CategoryRequest, 2), http.StatusBadRequest, codes.InvalidArgument, "Reading is missing a required field", "读数缺少必填字段"))
	ErrInvalidConditions   = Register(New(MakeCode(ServiceWeather, CategoryRequest, 3), http.StatusBadRequest, codes.InvalidArgument, "Invalid current conditions payload", "当前气象数据无效"))
)

// IsSourceConfigError 判断数据源错误是否为配置类错误（not-found / misconfigured）。
// 这类错误不会自行恢复，调用方应直接切换到演示数据。
func IsSourceConfigError(err error) bool {
	return Is(err, ErrSourceNotFound) || Is(err, ErrSourceMisconfigured)
}

// FetchKind 返回数据源错误的分类名称，用于日志与指标。
func FetchKind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrSourceNotFound):
		return "not-found"
	case Is(err, ErrSourceMisconfigured):
		return "misconfigured"
	case Is(err, ErrSourceMalformed):
		return "malformed-response"
	default:
		return "transient"
	}
}
