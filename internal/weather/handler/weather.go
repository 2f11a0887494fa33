// Package handler provides HTTP handlers for the weather service.
package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sentinel-weather/internal/weather/biz"
	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/infra/middleware"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/llm/resilience"
	"github.com/kart-io/sentinel-weather/pkg/response"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
	"github.com/kart-io/sentinel-weather/pkg/validator"
)

const (
	// maxBodyBytes 建议请求体上限
	maxBodyBytes  = 64 << 10
	// metricsPrefix Prometheus 指标前缀
	metricsPrefix = "sentinel_weather"
)

// WeatherHandler handles weather and advisory HTTP requests.
type WeatherHandler struct {
	svc     biz.Service
	metrics *metrics.WeatherMetrics
	pools   []*pool.Pool
	chat    llm.ChatProvider
	health  *middleware.HealthManager
}

// Option configures a WeatherHandler.
type Option func(*WeatherHandler)

// WithPools 池统计出现在 /v1/stats 中。
func WithPools(pools ...*pool.Pool) Option {
	return func(h *WeatherHandler) { h.pools = append(h.pools, pools...) }
}

// WithChatProvider 带熔断的供应商会在 /v1/stats 与 /metrics 中导出熔断状态。
func WithChatProvider(p llm.ChatProvider) Option {
	return func(h *WeatherHandler) { h.chat = p }
}

// WithHealth 指定 /healthz 使用的检查集合。
func WithHealth(m *middleware.HealthManager) Option {
	return func(h *WeatherHandler) { h.health = m }
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc biz.Service, m *metrics.WeatherMetrics, opts ...Option) *WeatherHandler {
	h := &WeatherHandler{svc: svc, metrics: m}
	for _, opt := range opts {
		opt(h)
	}
	if h.health == nil {
		h.health = middleware.NewHealthManager()
	}
	return h
}

// Current returns the reconciled current conditions.
//
//	@Summary		当前气象
//	@Description	对账后的当前气象数据，数据源不可用时返回演示数据
//	@Tags			weather
//	@Produce		json
//	@Param			city	query		string	false	"城市，缺省为配置的默认城市"
//	@Success		200		{object}	response.Response{data=model.CurrentConditions}
//	@Router			/v1/weather/current [get]
func (h *WeatherHandler) Current(c *gin.Context) {
	response.OK(c, h.svc.Current(c.Request.Context(), c.Query("city")))
}

// History returns trailing time series. 非法的 hours 按默认窗口处理。
//
//	@Summary	历史序列
//	@Tags		weather
//	@Produce	json
//	@Param		hours	query		int	false	"小时数，1 到 168"	default(24)
//	@Success	200		{object}	response.Response{data=model.History}
//	@Router		/v1/weather/history [get]
func (h *WeatherHandler) History(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(biz.DefaultHistoryHours)))
	if err != nil {
		hours = biz.DefaultHistoryHours
	}
	response.OK(c, h.svc.History(c.Request.Context(), hours))
}

// Forecast returns the multi-day forecast and its source marker.
//
//	@Summary	多日预报
//	@Tags		weather
//	@Produce	json
//	@Param		city	query		string	false	"城市"
//	@Success	200		{object}	response.Response{data=biz.ForecastResult}
//	@Router		/v1/weather/forecast [get]
func (h *WeatherHandler) Forecast(c *gin.Context) {
	response.OK(c, h.svc.Forecast(c.Request.Context(), c.Query("city")))
}

// ConditionsRequest 建议请求体。温度、湿度、气压必填，其余缺省为 0。
type ConditionsRequest struct {
	Temperature        *float64         `json:"temperature" validate:"required"`
	Humidity           *float64         `json:"humidity" validate:"required"`
	LightIntensity     float64          `json:"lightIntensity"`
	WindSpeed          float64          `json:"windSpeed"`
	Pressure           *float64         `json:"pressure" validate:"required"`
	Rainfall           float64          `json:"rainfall"`
	UVIndex            float64          `json:"uvIndex"`
	WeatherDescription string           `json:"weatherDescription" validate:"max=200"`
	Provenance         model.Provenance `json:"provenance" validate:"provenance"`
	ObservedAt         *time.Time       `json:"observedAt"`
}

// Conditions 转换为 CurrentConditions 并校验，错误信息为英文。
func (r ConditionsRequest) Conditions(now time.Time) (model.CurrentConditions, error) {
	return r.conditions(now, validator.LangEN)
}

func (r ConditionsRequest) conditions(now time.Time, lang string) (model.CurrentConditions, error) {
	if verrs := validator.Struct(r, lang); verrs != nil {
		return model.CurrentConditions{}, errors.ErrInvalidConditions.WithMessage(verrs.Error()).WithCause(verrs)
	}

	c := model.CurrentConditions{
		Temperature:        *r.Temperature,
		Humidity:           *r.Humidity,
		LightIntensity:     r.LightIntensity,
		WindSpeed:          r.WindSpeed,
		Pressure:           *r.Pressure,
		Rainfall:           r.Rainfall,
		UVIndex:            r.UVIndex,
		WeatherDescription: r.WeatherDescription,
		Provenance:         r.Provenance,
		ObservedAt:         now,
	}
	if c.Provenance == "" {
		c.Provenance = model.ProvenanceLive
	}
	if r.ObservedAt != nil {
		c.ObservedAt = *r.ObservedAt
	}
	// 数值范围由领域模型统一校验
	if err := c.Validate(); err != nil {
		return model.CurrentConditions{}, errors.ErrInvalidConditions.WithMessage(errors.FromError(err).MessageEN).WithCause(err)
	}
	return c, nil
}

func (h *WeatherHandler) bindConditions(c *gin.Context) (model.CurrentConditions, bool) {
	var req ConditionsRequest
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		response.Fail(c, errors.ErrInvalidConditions.WithMessage("request body is not a valid conditions object").WithCause(err))
		return model.CurrentConditions{}, false
	}

	cond, err := req.conditions(time.Now(), validator.LangFromAcceptLanguage(c.GetHeader("Accept-Language")))
	if err != nil {
		response.Fail(c, err)
		return model.CurrentConditions{}, false
	}
	return cond, true
}

// Prediction returns the 12-hour trend prediction.
//
//	@Summary	趋势预测
//	@Tags		advisory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ConditionsRequest	true	"当前气象"
//	@Success	200		{object}	response.Response{data=model.PredictionResult}
//	@Failure	400		{object}	response.Response
//	@Router		/v1/advisory/prediction [post]
func (h *WeatherHandler) Prediction(c *gin.Context) {
	if cond, ok := h.bindConditions(c); ok {
		response.OK(c, h.svc.Prediction(c.Request.Context(), cond))
	}
}

// Travel returns travel advice.
//
//	@Summary	出行建议
//	@Tags		advisory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ConditionsRequest	true	"当前气象"
//	@Success	200		{object}	response.Response{data=model.TravelAdvice}
//	@Failure	400		{object}	response.Response
//	@Router		/v1/advisory/travel [post]
func (h *WeatherHandler) Travel(c *gin.Context) {
	if cond, ok := h.bindConditions(c); ok {
		response.OK(c, h.svc.Travel(c.Request.Context(), cond))
	}
}

// Probability returns per-type weather probabilities.
//
//	@Summary	天气类型概率
//	@Tags		advisory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ConditionsRequest	true	"当前气象"
//	@Success	200		{object}	response.Response{data=model.ProbabilityForecast}
//	@Failure	400		{object}	response.Response
//	@Router		/v1/advisory/probability [post]
func (h *WeatherHandler) Probability(c *gin.Context) {
	if cond, ok := h.bindConditions(c); ok {
		response.OK(c, h.svc.Probability(c.Request.Context(), cond))
	}
}

// Advise returns all three advisories, resolved in parallel.
//
//	@Summary	全部建议
//	@Tags		advisory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ConditionsRequest	true	"当前气象"
//	@Success	200		{object}	response.Response{data=model.Advisories}
//	@Failure	400		{object}	response.Response
//	@Router		/v1/advisory [post]
func (h *WeatherHandler) Advise(c *gin.Context) {
	if cond, ok := h.bindConditions(c); ok {
		response.OK(c, h.svc.AdviseAll(c.Request.Context(), cond))
	}
}

// Stats returns the metrics snapshot.
//
//	@Summary	运行统计
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	response.Response
//	@Router		/v1/stats [get]
func (h *WeatherHandler) Stats(c *gin.Context) {
	stats := h.metrics.Stats()
	pools := make([]pool.Stats, 0, len(h.pools))
	for _, p := range h.pools {
		if p != nil {
			pools = append(pools, p.Stats())
		}
	}
	stats["pools"] = pools
	if b := resilience.GetChatProviderStats(h.chat); b != nil {
		stats["llm_breaker"] = b
	}
	response.OK(c, stats)
}

// Metrics exports metrics in Prometheus text format.
//
//	@Summary	Prometheus 指标
//	@Tags		ops
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/metrics [get]
func (h *WeatherHandler) Metrics(c *gin.Context) {
	body := h.metrics.Export(metricsPrefix)
	if b := resilience.GetChatProviderStats(h.chat); b != nil {
		body += metrics.ExportBreaker(metricsPrefix, b.State, b.Failures)
	}
	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(body))
}

// Health 汇总已注册的健康检查。
//
//	@Summary	健康检查
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	middleware.HealthResponse
//	@Failure	503	{object}	middleware.HealthResponse
//	@Router		/healthz [get]
func (h *WeatherHandler) Health(c *gin.Context) {
	h.health.Handler()(c)
}

// NotFound 未匹配路由统一返回错误信封。
func (h *WeatherHandler) NotFound(c *gin.Context) {
	response.Fail(c, errors.ErrRouteNotFound.WithMessagef("route %s %s not found", c.Request.Method, c.Request.URL.Path))
}
