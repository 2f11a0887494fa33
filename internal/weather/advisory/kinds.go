package advisory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kart-io/sentinel-weather/internal/weather/heuristic"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

// 建议种类名称
const (
	KindPrediction  = "prediction"
	KindTravel      = "travel"
	KindProbability = "probability"
)

// PredictionKind 未来 12 小时趋势预测。
func PredictionKind() Kind[model.PredictionResult] {
	return Kind[model.PredictionResult]{
		Name:         KindPrediction,
		SystemPrompt: "你是一个专业气象助手，擅长分析气象数据并提供准确的天气预测",
		BuildPrompt:  predictionPrompt,
		Decode:       decodePrediction,
		Heuristic:    heuristic.Prediction,
	}
}

// TravelKind 出行建议。
func TravelKind() Kind[model.TravelAdvice] {
	return Kind[model.TravelAdvice]{
		Name:         KindTravel,
		SystemPrompt: "你是一个专业的出行顾问，根据天气数据提供准确的出行建议",
		BuildPrompt:  travelPrompt,
		Decode:       decodeTravel,
		Heuristic:    heuristic.Travel,
	}
}

// ProbabilityKind 天气类型概率。
func ProbabilityKind() Kind[model.ProbabilityForecast] {
	return Kind[model.ProbabilityForecast]{
		Name:         KindProbability,
		SystemPrompt: "你是一个专业的气象学家，根据气象数据提供准确的天气概率预测",
		BuildPrompt:  probabilityPrompt,
		Decode:       decodeProbability,
		Heuristic:    heuristic.Probability,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func conditionLines(c model.CurrentConditions, skipZero bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "温度：%s°C\n", num(c.Temperature))
	fmt.Fprintf(&sb, "湿度：%s%%\n", num(c.Humidity))
	fmt.Fprintf(&sb, "气压：%s hPa\n", num(c.Pressure))
	if !skipZero || c.Rainfall != 0 {
		fmt.Fprintf(&sb, "降雨量：%s mm\n", num(c.Rainfall))
	}
	if !skipZero || c.WindSpeed != 0 {
		fmt.Fprintf(&sb, "风速：%s km/h\n", num(c.WindSpeed))
	}
	if !skipZero || c.UVIndex != 0 {
		fmt.Fprintf(&sb, "紫外线指数：%s\n", num(c.UVIndex))
	}
	return sb.String()
}

const jsonOnly = "请按以下JSON格式返回结果（不要添加任何其他文本，只返回JSON）：\n"

func predictionPrompt(c model.CurrentConditions) string {
	return "根据以下气象数据预测未来12小时的天气趋势并给出建议：\n" +
		conditionLines(c, true) + "\n" + jsonOnly +
		`{
  "prediction": "简短的总体预测描述（50字以内）",
  "trends": {
    "temperature": "温度趋势描述（30字以内）",
    "humidity": "湿度趋势描述（30字以内）",
    "pressure": "气压趋势描述（30字以内）",
    "general": "综合天气趋势（50字以内）"
  },
  "recommendations": ["建议1（30字以内）", "建议2（30字以内）", "建议3（30字以内）", "建议4（可选，30字以内）"]
}`
}

func travelPrompt(c model.CurrentConditions) string {
	return "根据以下气象数据提供出行建议：\n" +
		conditionLines(c, false) + "\n" + jsonOnly +
		`{
  "suitable": true或false（今日是否适合外出）,
  "reason": "rain"或"wind"或"temperature"或"good"（不适合外出的主要原因，如果适合则为"good"）,
  "title": "简短的建议标题（15字以内）",
  "description": "详细的出行建议（50字以内）",
  "items": ["具体建议1（20字以内）", "具体建议2（20字以内）", "具体建议3（20字以内）"]
}`
}

func probabilityPrompt(c model.CurrentConditions) string {
	return "根据以下气象数据预测各种天气状况的概率：\n" +
		conditionLines(c, false) + "\n" + jsonOnly +
		`{
  "probabilities": [
    {"type": "sunny", "probability": 数值（0-100之间的整数）},
    {"type": "cloudy", "probability": 数值（0-100之间的整数）},
    {"type": "rain", "probability": 数值（0-100之间的整数）},
    {"type": "windy", "probability": 数值（0-100之间的整数）}
  ],
  "forecastText": "专业的天气预测文本（100字以内）"
}`
}

func schemaErr(format string, args ...interface{}) error {
	return errors.ErrAdvisorySchema.WithMessagef(format, args...)
}

func decodeStrict(raw []byte, v interface{}) error {
	if err := json.UnmarshalStrict(raw, v); err != nil {
		return errors.ErrAdvisorySchema.WithCause(err)
	}
	return nil
}

func requireText(name string, v *string) (string, error) {
	if v == nil {
		return "", schemaErr("missing key %q", name)
	}
	if strings.TrimSpace(*v) == "" {
		return "", schemaErr("%q is empty", name)
	}
	return *v, nil
}

type predictionWire struct {
	Prediction *string `json:"prediction"`
	Trends     *struct {
		Temperature *string `json:"temperature"`
		Humidity    *string `json:"humidity"`
		Pressure    *string `json:"pressure"`
		General     *string `json:"general"`
	} `json:"trends"`
	Recommendations *[]string `json:"recommendations"`
}

func decodePrediction(raw []byte) (model.PredictionResult, error) {
	var w predictionWire
	if err := decodeStrict(raw, &w); err != nil {
		return model.PredictionResult{}, err
	}

	var (
		res model.PredictionResult
		err error
	)
	if res.Prediction, err = requireText("prediction", w.Prediction); err != nil {
		return model.PredictionResult{}, err
	}
	if w.Trends == nil {
		return model.PredictionResult{}, schemaErr("missing key %q", "trends")
	}
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"trends.temperature", w.Trends.Temperature, &res.Trends.Temperature},
		{"trends.humidity", w.Trends.Humidity, &res.Trends.Humidity},
		{"trends.pressure", w.Trends.Pressure, &res.Trends.Pressure},
		{"trends.general", w.Trends.General, &res.Trends.General},
	} {
		if *f.dst, err = requireText(f.name, f.src); err != nil {
			return model.PredictionResult{}, err
		}
	}

	if w.Recommendations == nil {
		return model.PredictionResult{}, schemaErr("missing key %q", "recommendations")
	}
	recs := *w.Recommendations
	if len(recs) < 1 || len(recs) > model.MaxRecommendations {
		return model.PredictionResult{}, schemaErr("recommendations must have 1-%d items, got %d", model.MaxRecommendations, len(recs))
	}
	res.Recommendations = append([]string(nil), recs...)
	res.Source = model.SourceRemote
	return res, nil
}

type travelWire struct {
	Suitable    *bool     `json:"suitable"`
	Reason      *string   `json:"reason"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Items       *[]string `json:"items"`
}

func decodeTravel(raw []byte) (model.TravelAdvice, error) {
	var w travelWire
	if err := decodeStrict(raw, &w); err != nil {
		return model.TravelAdvice{}, err
	}

	if w.Suitable == nil {
		return model.TravelAdvice{}, schemaErr("missing key %q", "suitable")
	}
	reason, err := requireText("reason", w.Reason)
	if err != nil {
		return model.TravelAdvice{}, err
	}
	if !model.TravelReason(reason).Valid() {
		return model.TravelAdvice{}, schemaErr("unknown reason %q", reason)
	}
	title, err := requireText("title", w.Title)
	if err != nil {
		return model.TravelAdvice{}, err
	}
	desc, err := requireText("description", w.Description)
	if err != nil {
		return model.TravelAdvice{}, err
	}
	if w.Items == nil {
		return model.TravelAdvice{}, schemaErr("missing key %q", "items")
	}
	if len(*w.Items) > model.MaxTravelItems {
		return model.TravelAdvice{}, schemaErr("items must have at most %d entries, got %d", model.MaxTravelItems, len(*w.Items))
	}

	return model.TravelAdvice{
		Suitable:    *w.Suitable,
		Reason:      model.TravelReason(reason),
		Title:       title,
		Description: desc,
		Items:       append([]string{}, *w.Items...),
		Source:      model.SourceRemote,
	}, nil
}

type probabilityWire struct {
	Probabilities *[]struct {
		Type        *string  `json:"type"`
		Probability *float64 `json:"probability"`
	} `json:"probabilities"`
	ForecastText *string `json:"forecastText"`
}

// 模型有时沿用中文类型名。
var typeAliases = map[string]model.WeatherType{
	"晴天": model.WeatherSunny,
	"晴":  model.WeatherSunny,
	"多云": model.WeatherCloudy,
	"降雨": model.WeatherRain,
	"雨":  model.WeatherRain,
	"大风": model.WeatherWindy,
}

func parseWeatherType(s string) (model.WeatherType, bool) {
	t := model.WeatherType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, true
	}
	t, ok := typeAliases[strings.TrimSpace(s)]
	return t, ok
}

func decodeProbability(raw []byte) (model.ProbabilityForecast, error) {
	var w probabilityWire
	if err := decodeStrict(raw, &w); err != nil {
		return model.ProbabilityForecast{}, err
	}

	if w.Probabilities == nil {
		return model.ProbabilityForecast{}, schemaErr("missing key %q", "probabilities")
	}
	if len(*w.Probabilities) == 0 {
		return model.ProbabilityForecast{}, schemaErr("probabilities is empty")
	}
	text, err := requireText("forecastText", w.ForecastText)
	if err != nil {
		return model.ProbabilityForecast{}, err
	}

	seen := make(map[model.WeatherType]bool)
	probs := make([]model.WeatherProbability, 0, len(*w.Probabilities))
	for i, p := range *w.Probabilities {
		if p.Type == nil || p.Probability == nil {
			return model.ProbabilityForecast{}, schemaErr("probabilities[%d] must have type and probability", i)
		}
		typ, ok := parseWeatherType(*p.Type)
		if !ok {
			return model.ProbabilityForecast{}, schemaErr("probabilities[%d]: unknown type %q", i, *p.Type)
		}
		if seen[typ] {
			return model.ProbabilityForecast{}, schemaErr("probabilities[%d]: duplicate type %q", i, typ)
		}
		seen[typ] = true

		v := *p.Probability
		if v != math.Trunc(v) || v < 0 || v > 100 {
			return model.ProbabilityForecast{}, schemaErr("probabilities[%d]: probability %v is not an integer in [0,100]", i, v)
		}
		probs = append(probs, model.WeatherProbability{Type: typ, Probability: int(v)})
	}

	return model.ProbabilityForecast{
		Probabilities: probs,
		ForecastText:  text,
		Source:        model.SourceRemote,
	}, nil
}
