// Package heuristic 提供不依赖模型的确定性建议计算。
//
// 所有函数均为纯函数：相同的输入总是得到相同的输出。
package heuristic

import (
	"fmt"
	"math"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// 阈值
const (
	RainThreshold     = 0.5  // mm/h
	WindThreshold     = 20.0 // km/h
	LightWindLevel    = 10.0 // km/h
	HotThreshold      = 30.0 // °C
	ColdThreshold     = 10.0 // °C
	LowPressureLevel  = 1000.0
	HighPressureLevel = 1020.0
)

type travelBranch struct {
	suitable    bool
	reason      model.TravelReason
	title       string
	description string
	items       [3]string
}

var (
	travelRain = travelBranch{
		suitable:    false,
		reason:      model.ReasonRain,
		title:       "今日不宜外出",
		description: "有降雨，建议减少不必要的外出。外出时请携带雨具，穿着防水鞋。",
		items:       [3]string{"建议携带雨具", "穿着防水鞋", "减少户外活动时间"},
	}
	travelWind = travelBranch{
		suitable:    false,
		reason:      model.ReasonWind,
		title:       "今日不宜外出",
		description: "风力较大，外出时注意防风，避免在树下、广告牌下等危险区域停留。",
		items:       [3]string{"注意防风", "避免在危险区域停留", "固定易被风吹走的物品"},
	}
	travelHot = travelBranch{
		suitable:    true,
		reason:      model.ReasonTemperature,
		title:       "今日需注意防暑",
		description: "气温较高，外出请做好防暑措施，多补充水分，避免长时间在烈日下活动。",
		items:       [3]string{"多补充水分", "穿着轻薄透气的衣物", "避免长时间在烈日下活动"},
	}
	travelCold = travelBranch{
		suitable:    true,
		reason:      model.ReasonTemperature,
		title:       "今日需注意保暖",
		description: "气温较低，外出请穿着保暖衣物，避免受凉感冒。",
		items:       [3]string{"穿着保暖衣物", "避免长时间在户外停留", "注意保暖防寒"},
	}
	travelGood = travelBranch{
		suitable:    true,
		reason:      model.ReasonGood,
		title:       "今日适合外出",
		description: "天气良好，温度适宜，是进行户外活动的好时机。",
		items:       [3]string{"适合户外活动", "穿着舒适的衣物", "享受良好天气"},
	}
)

// Travel 按固定优先级给出出行建议：降雨、大风、高温、低温、良好。
func Travel(c model.CurrentConditions) model.TravelAdvice {
	var b travelBranch
	switch {
	case c.Rainfall > RainThreshold:
		b = travelRain
	case c.WindSpeed > WindThreshold:
		b = travelWind
	case c.Temperature > HotThreshold:
		b = travelHot
	case c.Temperature < ColdThreshold:
		b = travelCold
	default:
		b = travelGood
	}

	return model.TravelAdvice{
		Suitable:    b.suitable,
		Reason:      b.reason,
		Title:       b.title,
		Description: b.description,
		Items:       append([]string(nil), b.items[:]...),
		Source:      model.SourceHeuristic,
	}
}

// Probability 计算四类天气的独立概率。
// 先按公式计算，再裁剪到 [0,100]，最后各自四舍五入。
func Probability(c model.CurrentConditions) model.ProbabilityForecast {
	rainfall, humidity := c.Rainfall, c.Humidity
	wind := math.Max(0, c.WindSpeed)

	sunny := clamp(100 - rainfall*50 - (humidity - 40))

	var cloudy float64
	if humidity > 60 {
		cloudy = clamp(60 + (humidity-60)*1.5)
	} else {
		cloudy = clamp(30 + humidity/2)
	}

	var rain float64
	switch {
	case rainfall > 0:
		rain = clamp(50 + rainfall*20)
	case humidity > 80:
		rain = clamp((humidity - 80) * 5)
	}

	var windy float64
	if wind > LightWindLevel {
		windy = clamp((wind - LightWindLevel) * 5)
	}

	probs := []model.WeatherProbability{
		{Type: model.WeatherSunny, Probability: round(sunny)},
		{Type: model.WeatherCloudy, Probability: round(cloudy)},
		{Type: model.WeatherRain, Probability: round(rain)},
		{Type: model.WeatherWindy, Probability: round(windy)},
	}

	return model.ProbabilityForecast{
		Probabilities: probs,
		ForecastText:  probabilityNarrative(c, probs),
		Source:        model.SourceHeuristic,
	}
}

func probabilityNarrative(c model.CurrentConditions, probs []model.WeatherProbability) string {
	// 并列时取先出现者
	top := probs[0]
	var rainProb int
	for _, p := range probs {
		if p.Probability > top.Probability {
			top = p
		}
		if p.Type == model.WeatherRain {
			rainProb = p.Probability
		}
	}

	text := fmt.Sprintf("专业预测：今日天气以%s为主，", top.Type.Label())

	switch {
	case c.Temperature > HotThreshold:
		text += "气温较高，注意防暑，"
	case c.Temperature < ColdThreshold:
		text += "气温较低，注意保暖，"
	default:
		text += "气温适宜，"
	}

	if c.Rainfall > 0 || rainProb > 50 {
		text += "有降雨可能，建议携带雨具。"
	} else {
		text += "降雨概率低。"
	}

	switch {
	case c.WindSpeed > WindThreshold:
		text += "风力较大，注意防风。"
	case c.WindSpeed > LightWindLevel:
		text += "有轻微风力。"
	default:
		text += "风力较小。"
	}
	return text
}

// Prediction 生成未来 12 小时趋势的本地预测。
func Prediction(c model.CurrentConditions) model.PredictionResult {
	t, h, p := c.Temperature, c.Humidity, c.Pressure

	var tempTrend string
	switch {
	case t > 30:
		tempTrend = "未来12小时温度可能略有下降，夜间降至26-28°C"
	case t > 20:
		tempTrend = "温度适中，预计白天升高2-3°C，夜间降低3-5°C"
	default:
		tempTrend = "温度偏低，预计将缓慢回升，日间最高可达22°C左右"
	}

	var humidityTrend string
	switch {
	case h < 30:
		humidityTrend = "湿度偏低，空气干燥，未来可能持续干燥状态"
	case h > 70:
		humidityTrend = "湿度较高，可能有降水，建议关注天气变化"
	default:
		humidityTrend = "湿度适中，体感舒适，预计无明显变化"
	}

	pressureTrend := "气压稳定，天气系统无明显变化"
	switch {
	case p < LowPressureLevel:
		pressureTrend = "气压偏低，可能有不稳定天气系统接近"
	case p > HighPressureLevel:
		pressureTrend = "气压偏高，预计天气晴朗稳定"
	}

	general := "总体天气状况稳定，无明显变化"
	switch {
	case t > 30 && h < 30:
		general = "高温干燥天气将持续，注意防暑防晒"
	case t > 25 && h > 70:
		general = "闷热潮湿天气，可能有雷阵雨，注意携带雨具"
	case t < 15:
		general = "气温偏低，建议适当增添衣物"
	}

	recs := make([]string, 0, model.MaxRecommendations)
	recs = append(recs, pick(t > 30, "避免正午户外活动，注意防暑降温", "天气适宜，可进行户外活动"))
	recs = append(recs, pick(h < 30, "注意补充水分，预防皮肤干燥", "湿度适宜，体感舒适"))
	recs = append(recs, pick(p < LowPressureLevel, "气压偏低，气象敏感人群注意调整作息", "气压稳定，适合日常活动"))
	recs = append(recs, "定期关注天气预报，及时调整出行计划")

	return model.PredictionResult{
		Prediction: fmt.Sprintf("基于当前气象数据（温度%.1f°C，湿度%.0f%%，气压%.2fhPa），AI预测未来12小时天气趋势如下：", t, h, p),
		Trends: model.Trends{
			Temperature: tempTrend,
			Humidity:    humidityTrend,
			Pressure:    pressureTrend,
			General:     general,
		},
		Recommendations: recs,
		Source:          model.SourceHeuristic,
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// clamp 裁剪到 [0,100]，NaN 视为 0。
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func round(v float64) int {
	return int(math.Round(v))
}
