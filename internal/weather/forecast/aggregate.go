// Package forecast 将三小时粒度的预报点聚合为逐日预报。
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
)

// DateLayout 日期格式。
const DateLayout = "2006-01-02"

const msToKmh = 3.6

type dayBucket struct {
	date      time.Time
	temps     []float64
	humidity  []float64
	pops      []float64
	windSpeed []float64
	windDeg   []float64
	idCounts  map[int]int
	idOrder   []int
}

// Aggregate 按 loc 时区的日历日分组，保持首次出现的顺序。
//
// 每日取最高/最低温度、平均湿度、最大降水概率、出现次数最多的天气码（并列取先出现者），
// 风速取平均值，风向取角度平均后映射到 8 方位。
func Aggregate(points []model.ForecastPoint, loc *time.Location) []model.ForecastDay {
	if loc == nil {
		loc = time.Local
	}

	var order []string
	buckets := make(map[string]*dayBucket)

	for _, p := range points {
		t := p.Time.In(loc)
		key := t.Format(DateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{date: t, idCounts: make(map[int]int)}
			buckets[key] = b
			order = append(order, key)
		}

		b.temps = append(b.temps, p.Temperature)
		b.humidity = append(b.humidity, p.Humidity)
		b.pops = append(b.pops, p.Pop*100)
		b.windSpeed = append(b.windSpeed, p.WindSpeed)
		b.windDeg = append(b.windDeg, p.WindDeg)
		if _, seen := b.idCounts[p.WeatherID]; !seen {
			b.idOrder = append(b.idOrder, p.WeatherID)
		}
		b.idCounts[p.WeatherID]++
	}

	days := make([]model.ForecastDay, 0, len(order))
	for _, key := range order {
		days = append(days, buckets[key].summarize(key))
	}
	return days
}

func (b *dayBucket) summarize(key string) model.ForecastDay {
	high, low := math.Inf(-1), math.Inf(1)
	for _, t := range b.temps {
		high = math.Max(high, t)
		low = math.Min(low, t)
	}

	maxPop := 0.0
	for _, p := range b.pops {
		maxPop = math.Max(maxPop, p)
	}

	weatherID, best := 800, 0
	for _, id := range b.idOrder {
		if n := b.idCounts[id]; n > best {
			weatherID, best = id, n
		}
	}

	avgSpeed := mean(b.windSpeed)
	avgDeg := mean(b.windDeg)

	return model.ForecastDay{
		Date:          key,
		Day:           WeekdayLabel(b.date),
		Weather:       Describe(weatherID),
		WeatherID:     weatherID,
		HighTemp:      int(roundHalfUp(high)),
		LowTemp:       int(roundHalfUp(low)),
		Precipitation: Percent(maxPop),
		Humidity:      Percent(mean(b.humidity)),
		Wind:          Wind(CompassLabel(avgDeg), avgSpeed*msToKmh),
	}
}

// Percent 渲染为 "N%"，N 裁剪到 [0,100]。
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Max(0, math.Min(100, roundHalfUp(v)))))
}

// Wind 渲染为 "{风向} {速度}km/h"。
func Wind(direction string, kmh float64) string {
	return fmt.Sprintf("%s %dkm/h", direction, int(roundHalfUp(kmh)))
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// roundHalfUp 与展示层保持一致：.5 向正无穷取整。
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
