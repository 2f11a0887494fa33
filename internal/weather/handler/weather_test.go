package handler_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/biz"
	"github.com/kart-io/sentinel-weather/internal/weather/handler"
	"github.com/kart-io/sentinel-weather/internal/weather/metrics"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/router"
	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/infra/middleware"
	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/llm/resilience"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

func newEngine(t *testing.T, opts ...handler.Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	svc := biz.NewWeatherService(biz.Deps{
		Generator: synthetic.New(synthetic.WithSeed(11), synthetic.WithLocation(time.UTC)),
		Metrics:   m,
	}, biz.Config{City: "hefei", Demo: true, Location: time.UTC})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())
	router.Register(r, handler.NewWeatherHandler(svc, m, opts...))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestWeatherEndpoints(t *testing.T) {
	r := newEngine(t)

	t.Run("current", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/v1/weather/current", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, env.Code)
		assert.NotEmpty(t, env.RequestID)

		var c model.CurrentConditions
		require.NoError(t, json.Unmarshal(env.Data, &c))
		assert.Equal(t, model.ProvenanceDemo, c.Provenance)
		assert.NoError(t, c.Validate())
	})

	t.Run("history", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/v1/weather/history?hours=abc", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var h model.History
		require.NoError(t, json.Unmarshal(env.Data, &h))
		assert.Len(t, h.Temperature, synthetic.Points)
	})

	t.Run("forecast", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/v1/weather/forecast?city=beijing", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var f biz.ForecastResult
		require.NoError(t, json.Unmarshal(env.Data, &f))
		assert.Equal(t, biz.ForecastSourceMock, f.Source)
		assert.Len(t, f.Days, synthetic.ForecastDays)
	})

	t.Run("stats and health", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/v1/stats", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "reconciles")

		w, _ = do(t, r, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"UP"`)

		w, _ = do(t, r, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "sentinel_weather_")
	})
}

func TestAdvisoryEndpoints(t *testing.T) {
	r := newEngine(t)
	body := []byte(`{"temperature":35,"humidity":30,"pressure":1015,"windSpeed":5,"rainfall":0,"uvIndex":9}`)

	t.Run("travel", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/v1/advisory/travel", body)
		require.Equal(t, http.StatusOK, w.Code)

		var advice model.TravelAdvice
		require.NoError(t, json.Unmarshal(env.Data, &advice))
		assert.Equal(t, model.ReasonTemperature, advice.Reason)
		assert.Equal(t, model.SourceHeuristic, advice.Source)
		assert.LessOrEqual(t, len(advice.Items), model.MaxTravelItems)
	})

	t.Run("probability", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/v1/advisory/probability", body)
		require.Equal(t, http.StatusOK, w.Code)

		var p model.ProbabilityForecast
		require.NoError(t, json.Unmarshal(env.Data, &p))
		require.Len(t, p.Probabilities, 4)
		for _, wp := range p.Probabilities {
			assert.True(t, wp.Type.Valid())
			assert.GreaterOrEqual(t, wp.Probability, 0)
			assert.LessOrEqual(t, wp.Probability, 100)
		}
	})

	t.Run("prediction", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/v1/advisory/prediction", body)
		require.Equal(t, http.StatusOK, w.Code)

		var p model.PredictionResult
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.NotEmpty(t, p.Prediction)
		assert.NotEmpty(t, p.Recommendations)
	})

	t.Run("all", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/v1/advisory", body)
		require.Equal(t, http.StatusOK, w.Code)

		var all model.Advisories
		require.NoError(t, json.Unmarshal(env.Data, &all))
		assert.Equal(t, model.ReasonTemperature, all.Travel.Reason)
		assert.NotEmpty(t, all.Prediction.Prediction)
		assert.Len(t, all.Probability.Probabilities, 4)
	})
}

func TestAdvisoryEndpoints_InvalidInput(t *testing.T) {
	r := newEngine(t)

	cases := map[string]string{
		"unparseable":      `{"temperature":`,
		"not an object":    `[1,2,3]`,
		"missing humidity": `{"temperature":20,"pressure":1010}`,
		"out of range":     `{"temperature":20,"humidity":140,"pressure":1010}`,
		"bad provenance":   `{"temperature":20,"humidity":40,"pressure":1010,"provenance":"guess"}`,
		"empty":            ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, "/v1/advisory/travel", []byte(body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, errors.ErrInvalidConditions.Code, env.Code)
		})
	}
}

func TestConditionsRequest_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	temp, hum, pres := 18.0, 55.0, 1012.0

	c, err := handler.ConditionsRequest{Temperature: &temp, Humidity: &hum, Pressure: &pres}.Conditions(now)
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceLive, c.Provenance)
	assert.Equal(t, now, c.ObservedAt)
	assert.Zero(t, c.WindSpeed)
}

func TestNotFound(t *testing.T) {
	r := newEngine(t)

	w, env := do(t, r, http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.ErrRouteNotFound.Code, env.Code)
	assert.Contains(t, env.Message, "/v1/nope")
}

func TestAdvisoryEndpoints_ChineseValidationMessage(t *testing.T) {
	r := newEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/advisory/travel", bytes.NewReader([]byte(`{"humidity":40,"pressure":1010}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, errors.ErrInvalidConditions.Code, env.Code)
	assert.Contains(t, env.Message, "temperature")
	assert.Contains(t, env.Message, "必填")
}

// failingChat 每次调用都失败。
type failingChat struct{}

func (failingChat) Chat(context.Context, []llm.Message) (string, error) {
	return "", stderrors.New("upstream unavailable")
}

func (failingChat) Generate(context.Context, string, string) (string, error) {
	return "", stderrors.New("upstream unavailable")
}

func (failingChat) Name() string { return "failing" }

func TestOpsEndpoints_BreakerStats(t *testing.T) {
	provider := resilience.NewResilientChatProvider(failingChat{}, nil, &resilience.CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          time.Hour,
		HalfOpenMaxCalls: 1,
	})
	_, err := provider.Generate(context.Background(), "prompt", "")
	require.Error(t, err)

	r := newEngine(t, handler.WithChatProvider(provider))

	w, env := do(t, r, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Breaker *resilience.Stats `json:"llm_breaker"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.NotNil(t, stats.Breaker)
	assert.Equal(t, "open", stats.Breaker.State)
	assert.Equal(t, 1, stats.Breaker.Failures)

	w, _ = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sentinel_weather_llm_breaker_state{state="open"} 1`)
	assert.Contains(t, w.Body.String(), "sentinel_weather_llm_breaker_failures 1")

	// 未包装熔断的供应商不导出熔断状态
	r = newEngine(t, handler.WithChatProvider(failingChat{}))
	w, _ = do(t, r, http.MethodGet, "/v1/stats", nil)
	assert.NotContains(t, w.Body.String(), "llm_breaker")
}

func TestHealthEndpoint_UsesRegisteredChecks(t *testing.T) {
	health := middleware.NewHealthManager()
	health.RegisterChecker("snapshot-store", func(context.Context) error { return stderrors.New("connection refused") })
	r := newEngine(t, handler.WithHealth(health))

	w, _ := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp middleware.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, middleware.HealthStatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["snapshot-store"].Message)
}

func TestSwaggerDoc(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Sentinel Weather API", doc.Info.Title)
	for _, path := range []string{"/v1/weather/current", "/v1/advisory/travel", "/healthz"} {
		assert.Contains(t, doc.Paths, path)
	}
}
