package synthetic

import (
	"math"

	"github.com/kart-io/sentinel-weather/internal/weather/forecast"
	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// ForecastDays 合成周预报的天数。
const ForecastDays = 7

var weeklyTypes = []struct {
	id   int
	desc string
}{
	{800, "晴"},
	{801, "多云"},
	{803, "阴"},
	{500, "小雨"},
	{501, "中雨"},
	{600, "小雪"},
}

var weeklyWinds = []string{"东风", "南风", "西风", "北风", "东北风", "东南风", "西南风", "西北风"}

// WeeklyForecast 从今天起生成 7 天的合成预报。
// 基准温度随天数正弦变化，降水概率与湿度区间跟随天气类型。
func (g *Generator) WeeklyForecast() []model.ForecastDay {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.clock.Now().In(g.loc)
	days := make([]model.ForecastDay, 0, ForecastDays)

	for i := 0; i < ForecastDays; i++ {
		date := today.AddDate(0, 0, i)
		w := weeklyTypes[g.rnd.Intn(len(weeklyTypes))]

		base := 20 + math.Sin(float64(i)*0.5)*5
		high := math.Round(base + g.rnd.Float64()*5)
		low := math.Round(base - g.rnd.Float64()*5)

		var precipitation float64
		switch {
		case w.id >= 500 && w.id < 600:
			precipitation = 50 + g.rnd.Float64()*50
		case w.id >= 600 && w.id < 700:
			precipitation = 40 + g.rnd.Float64()*40
		case w.id > 800:
			precipitation = g.rnd.Float64() * 30
		}

		var humidity float64
		switch {
		case w.id >= 500 && w.id < 700:
			humidity = 70 + g.rnd.Float64()*20
		case w.id == 800:
			humidity = 40 + g.rnd.Float64()*20
		default:
			humidity = 50 + g.rnd.Float64()*30
		}

		dir := weeklyWinds[g.rnd.Intn(len(weeklyWinds))]
		speed := 5 + g.rnd.Float64()*15

		days = append(days, model.ForecastDay{
			Date:          date.Format(forecast.DateLayout),
			Day:           forecast.WeekdayLabel(date),
			Weather:       w.desc,
			WeatherID:     w.id,
			HighTemp:      int(high),
			LowTemp:       int(low),
			Precipitation: forecast.Percent(precipitation),
			Humidity:      forecast.Percent(humidity),
			Wind:          forecast.Wind(dir, speed),
		})
	}
	return days
}
