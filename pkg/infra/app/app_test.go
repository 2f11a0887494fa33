package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"`
	} `mapstructure:"server"`
	Ambient struct {
		City   string `mapstructure:"city"`
		APIKey string `mapstructure:"api-key"`
	} `mapstructure:"ambient"`

	completed bool
	invalid   bool
}

func (o *testOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Server.Addr, "server.addr", ":8090", "addr")
	fs.StringVar(&o.Server.Mode, "server.mode", "release", "mode")
	fs.StringVar(&o.Ambient.City, "ambient.city", "hefei", "city")
	fs.StringVar(&o.Ambient.APIKey, "ambient.api-key", "", "key")
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	if o.invalid {
		return errors.New("invalid")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestAppPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "weather.yaml", "server:\n  addr: \":9000\"\n  mode: debug\nambient:\n  city: shanghai\n")
	env := writeFile(t, dir, ".env", "WEATHER_TEST_AMBIENT_API_KEY=from-dotenv\n")
	t.Setenv("WEATHER_TEST_SERVER_MODE", "test")

	opts := &testOptions{}
	ran := false
	a := NewApp(
		WithName("weather-test"),
		WithOptions(opts),
		WithEnvFiles(env),
		WithNoVersion(),
		WithRunFunc(func() error {
			ran = true
			return nil
		}),
	)
	defer os.Unsetenv("WEATHER_TEST_AMBIENT_API_KEY")

	a.Command().SetArgs([]string{"-c", cfg, "--ambient.city=nanjing"})
	require.NoError(t, a.Command().Execute())

	assert.True(t, ran)
	assert.True(t, opts.completed)
	assert.Equal(t, ":9000", opts.Server.Addr)
	assert.Equal(t, "test", opts.Server.Mode)
	assert.Equal(t, "nanjing", opts.Ambient.City)
	assert.Equal(t, "from-dotenv", opts.Ambient.APIKey)
}

func TestAppValidateFails(t *testing.T) {
	opts := &testOptions{invalid: true}
	a := NewApp(WithName("weather-invalid"), WithOptions(opts), WithNoVersion(), WithEnvFiles())
	a.Command().SetArgs([]string{})
	a.Command().SilenceErrors = true
	assert.Error(t, a.Command().Execute())
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "SENTINEL_WEATHER", EnvPrefix("sentinel-weather"))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WEATHER_CITY", "wuhan")
	a := NewApp(WithName("x"), WithNoVersion())
	a.Viper().Set("ambient.city", "${WEATHER_CITY}")
	a.Viper().Set("ambient.country", "$MISSING_VAR_FOR_TEST")
	expandEnvVars(a.Viper())
	assert.Equal(t, "wuhan", a.Viper().GetString("ambient.city"))
	assert.Equal(t, "$MISSING_VAR_FOR_TEST", a.Viper().GetString("ambient.country"))
}
