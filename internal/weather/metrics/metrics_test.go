package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherMetrics_Record(t *testing.T) {
	m := New()

	m.RecordFetch("thingspeak", "")
	m.RecordFetch("thingspeak", "transient")
	m.RecordFetch("openweather", "")
	m.RecordReconcile("live")
	m.RecordAdvisory("travel", "heuristic", "no-json-found")
	m.RecordAdvisory("travel", "remote", "")
	m.RecordLLMCall(200*time.Millisecond, nil)
	m.RecordLLMCall(100*time.Millisecond, errors.New("boom"))
	m.RecordSnapshot(true)
	m.RecordSnapshot(false)
	m.RecordForecast("mock")
	m.RecordTask("refresh", nil)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats["sources"].(map[string]uint64)["thingspeak/transient"])
	assert.Equal(t, uint64(1), stats["sources"].(map[string]uint64)["openweather/ok"])
	assert.Equal(t, uint64(1), stats["fallbacks"].(map[string]uint64)["travel/no-json-found"])
	assert.Equal(t, uint64(2), stats["llm"].(map[string]interface{})["calls_total"])
	assert.Equal(t, uint64(1), stats["llm"].(map[string]interface{})["errors"])
	assert.InDelta(t, 0.5, stats["snapshot"].(map[string]interface{})["hit_rate"], 1e-9)

	out := m.Export("weather")
	assert.Contains(t, out, `weather_source_fetches_total{source="thingspeak",result="transient"} 1`)
	assert.Contains(t, out, `weather_advisories_total{kind="travel",source="remote"} 1`)
	assert.Contains(t, out, "weather_llm_calls_errors_total 1")
	assert.Contains(t, out, `weather_forecasts_total{source="mock"} 1`)

	m.Reset()
	assert.Empty(t, m.Stats()["sources"])
}

func TestWeatherMetrics_NilSafe(t *testing.T) {
	var m *WeatherMetrics
	require.NotPanics(t, func() {
		m.RecordFetch("x", "")
		m.RecordAdvisory("k", "s", "c")
		m.RecordLLMCall(time.Second, nil)
		m.RecordSnapshot(true)
		_ = m.Export("")
		_ = m.Stats()
	})
}

func TestWeatherMetrics_Concurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordReconcile("demo")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(5000), m.Stats()["reconciles"].(map[string]uint64)["demo"])
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestExportBreaker(t *testing.T) {
	out := ExportBreaker("sentinel_weather", "half-open", 2)
	assert.Contains(t, out, "# TYPE sentinel_weather_llm_breaker_state gauge")
	assert.Contains(t, out, `sentinel_weather_llm_breaker_state{state="closed"} 0`)
	assert.Contains(t, out, `sentinel_weather_llm_breaker_state{state="half-open"} 1`)
	assert.Contains(t, out, "sentinel_weather_llm_breaker_failures 2")

	assert.Contains(t, ExportBreaker("", "closed", 0), `weather_llm_breaker_state{state="closed"} 1`)
}
