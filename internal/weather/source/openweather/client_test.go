package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/source"
	"github.com/kart-io/sentinel-weather/pkg/errors"
)

const weatherBody = `{
	"coord": {"lon": 117.28, "lat": 31.86},
	"weather": [{"id": 501, "main": "Rain", "description": "中雨"}],
	"main": {"temp": 18.6, "humidity": 88, "pressure": 1006},
	"wind": {"speed": 5, "deg": 120},
	"rain": {"1h": 2.4},
	"name": "Hefei"
}`

func newClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "key", Country: "cn", Timeout: time.Second})
}

func TestCurrent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hefei,cn", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "zh_cn", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(weatherBody))
	})
	mux.HandleFunc("/uvi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "31.86", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"value": 6.3}`))
	})

	r, err := newClient(t, mux).Current(context.Background(), "hefei")
	require.NoError(t, err)

	assert.Equal(t, "Hefei", r.City)
	assert.Equal(t, 18.6, *r.Temperature)
	assert.Equal(t, 88.0, *r.Humidity)
	assert.Equal(t, 1006.0, *r.Pressure)
	assert.InDelta(t, 18.0, *r.WindSpeed, 1e-9, "m/s converted to km/h")
	assert.Equal(t, 2.4, *r.Rainfall)
	assert.Equal(t, 6.3, *r.UVIndex)
	assert.Equal(t, 501, r.WeatherID)
	assert.Equal(t, "中雨", r.Description)
}

func TestCurrent_DefaultsWhenOptionalMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"coord":{"lon":1,"lat":2},"weather":[{"id":800,"description":"晴"}],"main":{"temp":25,"humidity":40}}`))
	})
	mux.HandleFunc("/uvi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	r, err := newClient(t, mux).Current(context.Background(), "hefei")
	require.NoError(t, err)
	assert.Nil(t, r.Pressure)
	assert.Zero(t, *r.Rainfall)
	assert.Zero(t, *r.UVIndex)
	assert.Zero(t, *r.WindSpeed)
	assert.Equal(t, "hefei", r.City)
}

func TestCurrent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"city not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, errors.ErrSourceNotFound},
		{"invalid key", http.StatusUnauthorized, `{"cod":401}`, errors.ErrSourceMisconfigured},
		{"unavailable", http.StatusServiceUnavailable, ``, errors.ErrSourceTransient},
		{"missing main", http.StatusOK, `{"coord":{"lon":1,"lat":2},"weather":[]}`, errors.ErrSourceMalformed},
		{"not json", http.StatusOK, `not json`, errors.ErrSourceMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/weather", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := newClient(t, mux).Current(context.Background(), "nowhere")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMissingKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Current(context.Background(), "hefei")
	assert.ErrorIs(t, err, errors.ErrSourceMisconfigured)
	_, err = c.Forecast(context.Background(), "hefei")
	assert.ErrorIs(t, err, errors.ErrSourceMisconfigured)
	assert.Zero(t, hits.Load())
}

func TestForecast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"list":[
			{"dt":1792195200,"main":{"temp":20.5,"humidity":60},"pop":0.2,"weather":[{"id":801}],"wind":{"speed":3,"deg":90}},
			{"dt":1792206000,"main":{"temp":24,"humidity":55},"weather":[],"wind":{"speed":4,"deg":100}}
		]}`))
	})

	points, err := newClient(t, mux).Forecast(context.Background(), "hefei")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1792195200, 0), points[0].Time)
	assert.Equal(t, 801, points[0].WeatherID)
	assert.Equal(t, 0.2, points[0].Pop)
	assert.Equal(t, 800, points[1].WeatherID)
	assert.Zero(t, points[1].Pop)
}

func TestRateLimitedSharesQuota(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"list":[]}`))
	})
	c := newClient(t, mux)

	rl := source.NewRateLimited(0.001, 1)
	forecast := rl.Forecast(c)
	assert.Equal(t, Name, forecast.Name())

	_, err := forecast.Forecast(context.Background(), "hefei")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rl.Ambient(c).Current(ctx, "hefei")
	assert.ErrorIs(t, err, errors.ErrSourceTransient)
}
