package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerOptions_Defaults(t *testing.T) {
	o := NewServerOptions()
	require.NoError(t, o.Complete())
	assert.NoError(t, o.Validate())
	assert.Equal(t, "sentinel-weather", o.TracingOptions.ServiceName)

	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Same(t, o.AmbientOptions, cfg.AmbientOptions)
}

func TestServerOptions_CompleteFromEnv(t *testing.T) {
	t.Setenv(envSensorChannel, "2001")
	t.Setenv(envSensorKey, "ts-key")
	t.Setenv(envAmbientKey, "owm-key")
	t.Setenv(envDeepSeekKey, "sk-env")

	o := NewServerOptions()
	o.AmbientOptions.APIKey = "from-flag"
	require.NoError(t, o.Complete())

	assert.Equal(t, "2001", o.SensorOptions.ChannelID)
	assert.Equal(t, "ts-key", o.SensorOptions.APIKey)
	assert.Equal(t, "from-flag", o.AmbientOptions.APIKey, "explicit value wins over env")
	assert.Equal(t, "sk-env", o.LLMOptions.APIKey)

	o = NewServerOptions()
	o.LLMOptions.Provider = "openai"
	require.NoError(t, o.Complete())
	assert.Empty(t, o.LLMOptions.APIKey)
}

func TestServerOptions_ValidateAggregates(t *testing.T) {
	o := NewServerOptions()
	o.ServerOptions.Mode = "bogus"
	o.AmbientOptions.Timezone = "Mars/Olympus"
	o.SchedulerOptions.RefreshInterval = -1

	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
	assert.Contains(t, err.Error(), "ambient.timezone")
	assert.Contains(t, err.Error(), "scheduler.refresh-interval")
}

func TestServerOptions_AddFlags(t *testing.T) {
	o := NewServerOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--ambient.city=shanghai",
		"--ambient.timezone=UTC",
		"--sensor.channel-id=42",
	}))
	assert.Equal(t, "shanghai", o.AmbientOptions.City)
	assert.Equal(t, "UTC", o.AmbientOptions.Timezone)
	assert.Equal(t, "42", o.SensorOptions.ChannelID)
}
