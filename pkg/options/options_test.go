package options_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-weather/pkg/options"
	llmopts "github.com/kart-io/sentinel-weather/pkg/options/llm"
	redisopts "github.com/kart-io/sentinel-weather/pkg/options/redis"
	scheduleropts "github.com/kart-io/sentinel-weather/pkg/options/scheduler"
	serveropts "github.com/kart-io/sentinel-weather/pkg/options/server"
	sourceopts "github.com/kart-io/sentinel-weather/pkg/options/source"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "", options.Join())
	assert.Equal(t, "a.", options.Join("a"))
	assert.Equal(t, "a.b.", options.Join("a", "b"))
}

func TestDefaultsValidate(t *testing.T) {
	errs := options.ValidateAll(
		serveropts.NewOptions(),
		llmopts.NewProviderOptions(),
		redisopts.NewOptions(),
		sourceopts.NewSensorOptions(),
		sourceopts.NewAmbientOptions(),
		scheduleropts.NewOptions(),
	)
	assert.Empty(t, errs)
}

func TestValidateAllCollects(t *testing.T) {
	srv := serveropts.NewOptions()
	srv.Addr = ""
	srv.Mode = "fast"
	llm := llmopts.NewProviderOptions()
	llm.Provider = "ollama"

	errs := options.ValidateAll(srv, llm)
	assert.Len(t, errs, 3)
}

func TestFlagsBindWithPrefix(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	sensor := sourceopts.NewSensorOptions()
	sensor.AddFlags(fs)
	redis := redisopts.NewOptions()
	redis.AddFlags(fs, "cache")

	require.NoError(t, fs.Parse([]string{"--sensor.channel-id=42", "--sensor.api-key=k", "--cache.redis.port=6380"}))
	assert.True(t, sensor.Configured())
	assert.Equal(t, "127.0.0.1:6380", redis.Addr())
}

func TestRedisOptionsRedactPassword(t *testing.T) {
	o := redisopts.NewOptions()
	o.Password = "hunter2"
	b, err := o.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hunter2")
	assert.NotContains(t, o.String(), "hunter2")
}

func TestLLMOptionsEnabled(t *testing.T) {
	o := llmopts.NewProviderOptions()
	assert.False(t, o.Enabled())
	o.APIKey = "sk"
	assert.True(t, o.Enabled())
	assert.Equal(t, 500, o.ToConfigMap()["max_tokens"])
}
