package heuristic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

func conditions(temp, humidity, rainfall, wind float64) model.CurrentConditions {
	return model.CurrentConditions{
		Temperature: temp,
		Humidity:    humidity,
		Rainfall:    rainfall,
		WindSpeed:   wind,
		Pressure:    1013,
		Provenance:  model.ProvenanceLive,
	}
}

func probabilityOf(f model.ProbabilityForecast, typ model.WeatherType) int {
	for _, p := range f.Probabilities {
		if p.Type == typ {
			return p.Probability
		}
	}
	return -1
}

func TestTravel_RainAlwaysWins(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		c := conditions(r.Float64()*80-30, r.Float64()*100, 0.5001+r.Float64()*50, r.Float64()*100)
		advice := Travel(c)
		require.False(t, advice.Suitable)
		require.Equal(t, model.ReasonRain, advice.Reason)
	}
}

func TestTravel_WindWhenDry(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		c := conditions(r.Float64()*80-30, r.Float64()*100, r.Float64()*0.5, 20.0001+r.Float64()*80)
		advice := Travel(c)
		require.False(t, advice.Suitable)
		require.Equal(t, model.ReasonWind, advice.Reason)
	}
}

func TestTravel_Branches(t *testing.T) {
	tests := []struct {
		name     string
		c        model.CurrentConditions
		suitable bool
		reason   model.TravelReason
		title    string
	}{
		{"heat", conditions(32, 45, 0, 8), true, model.ReasonTemperature, "今日需注意防暑"},
		{"cold", conditions(5, 45, 0, 8), true, model.ReasonTemperature, "今日需注意保暖"},
		{"good", conditions(22, 50, 0.5, 20), true, model.ReasonGood, "今日适合外出"},
		{"rain", conditions(18, 85, 2, 5), false, model.ReasonRain, "今日不宜外出"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := Travel(tt.c)
			assert.Equal(t, tt.suitable, advice.Suitable)
			assert.Equal(t, tt.reason, advice.Reason)
			assert.Equal(t, tt.title, advice.Title)
			assert.Len(t, advice.Items, 3)
			assert.Equal(t, model.SourceHeuristic, advice.Source)
		})
	}
}

func TestTravel_ItemsNotShared(t *testing.T) {
	a := Travel(conditions(22, 50, 0, 0))
	a.Items[0] = "changed"
	b := Travel(conditions(22, 50, 0, 0))
	assert.Equal(t, "适合户外活动", b.Items[0])
}

func TestProbability_HeatScenario(t *testing.T) {
	f := Probability(conditions(32, 45, 0, 8))

	assert.Equal(t, 95, probabilityOf(f, model.WeatherSunny))
	assert.Equal(t, 53, probabilityOf(f, model.WeatherCloudy))
	assert.Equal(t, 0, probabilityOf(f, model.WeatherRain))
	assert.Equal(t, 0, probabilityOf(f, model.WeatherWindy))
	assert.Contains(t, f.ForecastText, "今日天气以晴天为主")
	assert.Contains(t, f.ForecastText, "气温较高")
	assert.Contains(t, f.ForecastText, "降雨概率低")
}

func TestProbability_RainScenario(t *testing.T) {
	f := Probability(conditions(18, 85, 2, 5))

	assert.Equal(t, 90, probabilityOf(f, model.WeatherRain))
	assert.Equal(t, 0, probabilityOf(f, model.WeatherSunny))
	assert.Equal(t, 98, probabilityOf(f, model.WeatherCloudy))
	assert.Contains(t, f.ForecastText, "有降雨可能")
}

func TestProbability_ExtremeInputsStayInRange(t *testing.T) {
	f := Probability(conditions(50, 150, 100, -5))
	for _, p := range f.Probabilities {
		assert.GreaterOrEqual(t, p.Probability, 0)
		assert.LessOrEqual(t, p.Probability, 100)
	}
	assert.Equal(t, 0, probabilityOf(f, model.WeatherSunny))
	assert.Equal(t, 100, probabilityOf(f, model.WeatherRain))
	assert.Equal(t, 0, probabilityOf(f, model.WeatherWindy))

	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		c := conditions(r.Float64()*200-100, r.Float64()*400-100, r.Float64()*300-10, r.Float64()*300-50)
		for _, p := range Probability(c).Probabilities {
			require.GreaterOrEqual(t, p.Probability, 0)
			require.LessOrEqual(t, p.Probability, 100)
		}
	}
}

func TestProbability_Deterministic(t *testing.T) {
	c := conditions(24.3, 66.1, 0.2, 13.7)
	assert.Equal(t, Probability(c), Probability(c))
	assert.Equal(t, Prediction(c), Prediction(c))
}

func TestProbability_WindNarrative(t *testing.T) {
	assert.Contains(t, Probability(conditions(20, 50, 0, 25)).ForecastText, "风力较大")
	assert.Contains(t, Probability(conditions(20, 50, 0, 15)).ForecastText, "有轻微风力")
	assert.Contains(t, Probability(conditions(20, 50, 0, 5)).ForecastText, "风力较小")
}

func TestPrediction(t *testing.T) {
	hot := model.CurrentConditions{Temperature: 33, Humidity: 25, Pressure: 995}
	p := Prediction(hot)

	assert.Equal(t, "基于当前气象数据（温度33.0°C，湿度25%，气压995.00hPa），AI预测未来12小时天气趋势如下：", p.Prediction)
	assert.Equal(t, "高温干燥天气将持续，注意防暑防晒", p.Trends.General)
	assert.Equal(t, "气压偏低，可能有不稳定天气系统接近", p.Trends.Pressure)
	require.Len(t, p.Recommendations, model.MaxRecommendations)
	assert.Equal(t, "避免正午户外活动，注意防暑降温", p.Recommendations[0])
	assert.Equal(t, "定期关注天气预报，及时调整出行计划", p.Recommendations[3])

	humid := Prediction(model.CurrentConditions{Temperature: 27, Humidity: 80, Pressure: 1025})
	assert.Equal(t, "闷热潮湿天气，可能有雷阵雨，注意携带雨具", humid.Trends.General)
	assert.Equal(t, "气压偏高，预计天气晴朗稳定", humid.Trends.Pressure)

	cold := Prediction(model.CurrentConditions{Temperature: 8, Humidity: 50, Pressure: 1010})
	assert.Equal(t, "气温偏低，建议适当增添衣物", cold.Trends.General)
	assert.Equal(t, model.SourceHeuristic, cold.Source)
}
