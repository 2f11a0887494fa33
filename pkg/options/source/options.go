// Package source provides options for the sensor feed and the ambient weather API.
package source

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-weather/pkg/options"
)

var (
	_ options.IOptions = (*SensorOptions)(nil)
	_ options.IOptions = (*AmbientOptions)(nil)
)

// SensorOptions ThingSpeak 通道配置。
type SensorOptions struct {
	BaseURL   string        `json:"base-url" mapstructure:"base-url"`
	ChannelID string        `json:"channel-id" mapstructure:"channel-id"`
	APIKey    string        `json:"-" mapstructure:"api-key"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	// Rate 每秒允许的出站请求数，0 表示不限速。
	Rate  float64 `json:"rate" mapstructure:"rate"`
	Burst int     `json:"burst" mapstructure:"burst"`
}

// NewSensorOptions 返回默认配置。
func NewSensorOptions() *SensorOptions {
	return &SensorOptions{
		BaseURL: "https://api.thingspeak.com",
		Timeout: 10 * time.Second,
		Rate:    1,
		Burst:   3,
	}
}

// AddFlags adds sensor flags.
func (o *SensorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "sensor."
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "ThingSpeak API base URL.")
	fs.StringVar(&o.ChannelID, p+"channel-id", o.ChannelID, "ThingSpeak channel ID.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "ThingSpeak read API key.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Sensor request timeout.")
	fs.Float64Var(&o.Rate, p+"rate", o.Rate, "Sensor requests per second (0 disables limiting).")
	fs.IntVar(&o.Burst, p+"burst", o.Burst, "Sensor request burst size.")
}

// Configured 通道与密钥都已配置。
func (o *SensorOptions) Configured() bool {
	return o.ChannelID != "" && o.APIKey != ""
}

// Validate validates sensor options. 缺少通道或密钥不是错误，运行时按演示模式处理。
func (o *SensorOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("sensor.base-url is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sensor.timeout must be positive"))
	}
	if o.Rate < 0 {
		errs = append(errs, fmt.Errorf("sensor.rate must not be negative"))
	}
	return errs
}

// AmbientOptions OpenWeather 配置。
type AmbientOptions struct {
	BaseURL string `json:"base-url" mapstructure:"base-url"`
	APIKey  string `json:"-" mapstructure:"api-key"`
	City    string `json:"city" mapstructure:"city"`
	Country string `json:"country" mapstructure:"country"`
	Lang    string `json:"lang" mapstructure:"lang"`
	// Timezone 历史分桶与预报按日汇总所用的 IANA 时区。
	Timezone string        `json:"timezone" mapstructure:"timezone"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	Rate     float64       `json:"rate" mapstructure:"rate"`
	Burst    int           `json:"burst" mapstructure:"burst"`
}

// NewAmbientOptions 返回默认配置。
func NewAmbientOptions() *AmbientOptions {
	return &AmbientOptions{
		BaseURL:  "https://api.openweathermap.org/data/2.5",
		City:     "hefei",
		Country:  "cn",
		Lang:     "zh_cn",
		Timezone: "Asia/Shanghai",
		Timeout:  10 * time.Second,
		Rate:     5,
		Burst:    5,
	}
}

// AddFlags adds ambient flags.
func (o *AmbientOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "ambient."
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "OpenWeather API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "OpenWeather API key.")
	fs.StringVar(&o.City, p+"city", o.City, "Default city.")
	fs.StringVar(&o.Country, p+"country", o.Country, "Default country code.")
	fs.StringVar(&o.Lang, p+"lang", o.Lang, "Language of weather descriptions.")
	fs.StringVar(&o.Timezone, p+"timezone", o.Timezone, "IANA timezone used to bucket history and forecast days.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Ambient request timeout.")
	fs.Float64Var(&o.Rate, p+"rate", o.Rate, "Ambient requests per second (0 disables limiting).")
	fs.IntVar(&o.Burst, p+"burst", o.Burst, "Ambient request burst size.")
}

// Location 解析时区，未配置时返回本地时区。
func (o *AmbientOptions) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(o.Timezone)
}

// Configured 是否配置了 API key。
func (o *AmbientOptions) Configured() bool {
	return o.APIKey != ""
}

// Validate validates ambient options.
func (o *AmbientOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("ambient.base-url is required"))
	}
	if o.City == "" {
		errs = append(errs, fmt.Errorf("ambient.city is required"))
	}
	if _, err := o.Location(); err != nil {
		errs = append(errs, fmt.Errorf("ambient.timezone %q is invalid: %w", o.Timezone, err))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ambient.timeout must be positive"))
	}
	if o.Rate < 0 {
		errs = append(errs, fmt.Errorf("ambient.rate must not be negative"))
	}
	return errs
}
