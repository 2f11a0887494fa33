package model

import "time"

// SensorReading 传感器通道的一次采样。字段缺失或非数值时为 nil，而不是 0。
type SensorReading struct {
	EntryID     int       `json:"entryId"`
	CreatedAt   time.Time `json:"createdAt"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Light       *float64  `json:"light,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty"`
	Rainfall    *float64  `json:"rainfall,omitempty"`
	UVIndex     *float64  `json:"uvIndex,omitempty"`
}

// AmbientReading 公共天气接口的一次观测，风速已换算为 km/h。
type AmbientReading struct {
	City        string   `json:"city"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	WindSpeed   *float64 `json:"windSpeed,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
	UVIndex     *float64 `json:"uvIndex,omitempty"`
	WeatherID   int      `json:"weatherId"`
	Description string   `json:"description"`
}

// ForecastPoint 三小时粒度的预报点。
type ForecastPoint struct {
	Time time.Time
	// Temperature 摄氏度
	Temperature float64
	Humidity    float64
	// Pop 降水概率 0..1
	Pop       float64
	WeatherID int
	// WindSpeed m/s
	WindSpeed float64
	WindDeg   float64
}

// Float 返回指向 v 的指针。
func Float(v float64) *float64 {
	return &v
}
