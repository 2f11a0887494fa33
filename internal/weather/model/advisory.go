package model

// AdvisorySource 建议结果的来源。
type AdvisorySource string

const (
	SourceRemote    AdvisorySource = "remote"
	SourceHeuristic AdvisorySource = "heuristic"
)

// Trends 四类趋势描述。
type Trends struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	General     string `json:"general"`
}

// MaxRecommendations 预测建议条数上限。
const MaxRecommendations = 4

// PredictionResult 短期趋势预测。
type PredictionResult struct {
	Prediction      string         `json:"prediction"`
	Trends          Trends         `json:"trends"`
	Recommendations []string       `json:"recommendations"`
	Source          AdvisorySource `json:"source"`
}

// TravelReason 出行建议原因。
type TravelReason string

const (
	ReasonRain        TravelReason = "rain"
	ReasonWind        TravelReason = "wind"
	ReasonTemperature TravelReason = "temperature"
	ReasonGood        TravelReason = "good"
)

// Valid reports whether r is a known reason.
func (r TravelReason) Valid() bool {
	switch r {
	case ReasonRain, ReasonWind, ReasonTemperature, ReasonGood:
		return true
	}
	return false
}

// MaxTravelItems 出行建议条目上限。
const MaxTravelItems = 3

// TravelAdvice 出行建议。
type TravelAdvice struct {
	Suitable    bool           `json:"suitable"`
	Reason      TravelReason   `json:"reason"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Items       []string       `json:"items"`
	Source      AdvisorySource `json:"source"`
}

// WeatherType 天气类型。
type WeatherType string

const (
	WeatherSunny  WeatherType = "sunny"
	WeatherCloudy WeatherType = "cloudy"
	WeatherRain   WeatherType = "rain"
	WeatherWindy  WeatherType = "windy"
)

// Valid reports whether w is a known weather type.
func (w WeatherType) Valid() bool {
	switch w {
	case WeatherSunny, WeatherCloudy, WeatherRain, WeatherWindy:
		return true
	}
	return false
}

// Label 返回中文名称。
func (w WeatherType) Label() string {
	switch w {
	case WeatherSunny:
		return "晴天"
	case WeatherCloudy:
		return "多云"
	case WeatherRain:
		return "降雨"
	case WeatherWindy:
		return "大风"
	}
	return string(w)
}

// WeatherProbability 单个天气类型的独立概率估计，0..100。
type WeatherProbability struct {
	Type        WeatherType `json:"type"`
	Probability int         `json:"probability"`
}

// ProbabilityForecast 各天气类型概率。概率之间相互独立，总和不必为 100。
type ProbabilityForecast struct {
	Probabilities []WeatherProbability `json:"probabilities"`
	ForecastText  string               `json:"forecastText"`
	Source        AdvisorySource       `json:"source"`
}

// Advisories 同一快照的三类建议。
type Advisories struct {
	Prediction  PredictionResult    `json:"prediction"`
	Travel      TravelAdvice        `json:"travel"`
	Probability ProbabilityForecast `json:"probability"`
}

// ForecastDay 单日预报。
type ForecastDay struct {
	Date          string `json:"date"`
	Day           string `json:"day"`
	Weather       string `json:"weather"`
	WeatherID     int    `json:"weatherId"`
	HighTemp      int    `json:"highTemp"`
	LowTemp       int    `json:"lowTemp"`
	Precipitation string `json:"precipitation"`
	Humidity      string `json:"humidity"`
	Wind          string `json:"wind"`
}
