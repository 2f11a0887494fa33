// Package options contains flags and options for initializing the weather server.
package options

import (
	"os"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	weathersvc "github.com/kart-io/sentinel-weather/internal/weather"
	"github.com/kart-io/sentinel-weather/pkg/infra/tracing"
	"github.com/kart-io/sentinel-weather/pkg/options"
	llmopts "github.com/kart-io/sentinel-weather/pkg/options/llm"
	logopts "github.com/kart-io/sentinel-weather/pkg/options/logger"
	redisopts "github.com/kart-io/sentinel-weather/pkg/options/redis"
	scheduleropts "github.com/kart-io/sentinel-weather/pkg/options/scheduler"
	serveropts "github.com/kart-io/sentinel-weather/pkg/options/server"
	sourceopts "github.com/kart-io/sentinel-weather/pkg/options/source"
)

// 与原有部署兼容的环境变量，仅在未通过配置或参数设置时读取。
const (
	envSensorChannel = "NEXT_PUBLIC_THINGSPEAK_CHANNEL_ID"
	envSensorKey     = "THINGSPEAK_API_KEY"
	envAmbientKey    = "OPENWEATHER_API_KEY"
	envDeepSeekKey   = "DEEPSEEK_API_KEY"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// ServerOptions contains HTTP server configuration.
	ServerOptions *serveropts.Options `json:"server" mapstructure:"server"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// SensorOptions contains the ThingSpeak channel configuration.
	SensorOptions *sourceopts.SensorOptions `json:"sensor" mapstructure:"sensor"`

	// AmbientOptions contains the OpenWeather configuration.
	AmbientOptions *sourceopts.AmbientOptions `json:"ambient" mapstructure:"ambient"`

	// LLMOptions contains the advisory provider configuration.
	LLMOptions *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`

	// RedisOptions contains the snapshot store configuration.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// SchedulerOptions contains periodic task configuration.
	SchedulerOptions *scheduleropts.Options `json:"scheduler" mapstructure:"scheduler"`

	// TracingOptions contains OpenTelemetry configuration.
	TracingOptions *tracing.Options `json:"tracing" mapstructure:"tracing"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		ServerOptions:    serveropts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		SensorOptions:    sourceopts.NewSensorOptions(),
		AmbientOptions:   sourceopts.NewAmbientOptions(),
		LLMOptions:       llmopts.NewProviderOptions(),
		RedisOptions:     redisopts.NewOptions(),
		SchedulerOptions: scheduleropts.NewOptions(),
		TracingOptions:   tracing.NewOptions(),
	}
}

// AddFlags adds all option groups to fs.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.ServerOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.SensorOptions.AddFlags(fs)
	o.AmbientOptions.AddFlags(fs)
	o.LLMOptions.AddFlags(fs)
	o.RedisOptions.AddFlags(fs)
	o.SchedulerOptions.AddFlags(fs)
	o.TracingOptions.AddFlags(fs)
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	fromEnv(&o.SensorOptions.ChannelID, envSensorChannel)
	fromEnv(&o.SensorOptions.APIKey, envSensorKey)
	fromEnv(&o.AmbientOptions.APIKey, envAmbientKey)
	if o.LLMOptions.Provider == "deepseek" {
		fromEnv(&o.LLMOptions.APIKey, envDeepSeekKey)
	}
	o.RedisOptions.Complete()

	if o.TracingOptions.ServiceName == "" {
		o.TracingOptions.ServiceName = weathersvc.Name
	}
	return nil
}

func fromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := options.ValidateAll(
		o.ServerOptions,
		o.LogOptions,
		o.SensorOptions,
		o.AmbientOptions,
		o.LLMOptions,
		o.RedisOptions,
		o.SchedulerOptions,
		o.TracingOptions,
	)
	return utilerrors.NewAggregate(errs)
}

// Config builds a weathersvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*weathersvc.Config, error) {
	return &weathersvc.Config{
		ServerOptions:    o.ServerOptions,
		LogOptions:       o.LogOptions,
		SensorOptions:    o.SensorOptions,
		AmbientOptions:   o.AmbientOptions,
		LLMOptions:       o.LLMOptions,
		RedisOptions:     o.RedisOptions,
		SchedulerOptions: o.SchedulerOptions,
		TracingOptions:   o.TracingOptions,
	}, nil
}
