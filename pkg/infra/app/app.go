// Package app provides application bootstrapping with Cobra, Viper, and Pflag.
//
// Configuration precedence, highest first: changed flags, environment
// variables (after an optional .env file), config file, defaults.
//
//	app := app.NewApp(
//	    app.WithName("sentinel-weather"),
//	    app.WithOptions(opts),
//	    app.WithRunFunc(run),
//	)
//	app.Run()
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CliOptions is implemented by the root options of an application.
type CliOptions interface {
	// AddFlags registers all option groups on fs.
	AddFlags(fs *pflag.FlagSet)
	// Complete fills derived values after config loading.
	Complete() error
	// Validate returns an aggregated validation error.
	Validate() error
}

// App is the main application structure.
type App struct {
	name        string
	shortDesc   string
	description string
	options     CliOptions
	runFunc     RunFunc
	onChange    func(fsnotify.Event)
	cmd         *cobra.Command
	v           *viper.Viper
	envFiles    []string
	noVersion   bool
}

// RunFunc is the application's run function.
type RunFunc func() error

// Option configures an App.
type Option func(*App)

// WithName sets the application name.
func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// WithShortDescription sets the short description.
func WithShortDescription(desc string) Option {
	return func(a *App) {
		a.shortDesc = desc
	}
}

// WithDescription sets the long description.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithOptions sets the CLI options.
func WithOptions(opts CliOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc sets the run function.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithEnvFiles sets the dotenv files loaded before the environment is read.
// Missing files are ignored. Defaults to ".env".
func WithEnvFiles(files ...string) Option {
	return func(a *App) {
		a.envFiles = files
	}
}

// WithConfigWatch watches the loaded config file and calls fn on every change.
func WithConfigWatch(fn func(fsnotify.Event)) Option {
	return func(a *App) {
		a.onChange = fn
	}
}

// WithNoVersion disables version flag.
func WithNoVersion() Option {
	return func(a *App) {
		a.noVersion = true
	}
}

// NewApp creates a new application instance.
func NewApp(opts ...Option) *App {
	a := &App{
		name:     filepath.Base(os.Args[0]),
		v:        viper.New(),
		envFiles: []string{".env"},
	}

	for _, opt := range opts {
		opt(a)
	}

	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:          a.name,
		Short:        a.shortDesc,
		Long:         a.description,
		RunE:         a.runCommand,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	if !a.noVersion {
		version.AddFlags(cmd.PersistentFlags())
	}
	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, _ []string) error {
	if !a.noVersion {
		version.PrintAndExitIfRequested()
	}

	if err := a.loadConfig(cmd); err != nil {
		return err
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.runFunc != nil {
		return a.runFunc()
	}
	return nil
}

// loadConfig loads configuration from .env, file, environment, and flags.
func (a *App) loadConfig(cmd *cobra.Command) error {
	if err := loadEnvFiles(a.envFiles...); err != nil {
		return err
	}

	v := a.v
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(a.name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), "."+a.name))
		v.AddConfigPath("/etc/" + a.name)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	expandEnvVars(v)

	v.SetEnvPrefix(EnvPrefix(a.name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// flags bound so that AutomaticEnv applies to keys absent from the file
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if a.options != nil {
		changed := make(map[string]string)
		cmd.Flags().Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})

		if err := v.Unmarshal(a.options); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}

		for name, val := range changed {
			if err := cmd.Flags().Set(name, val); err != nil {
				return fmt.Errorf("failed to re-apply flag %s: %w", name, err)
			}
		}
	}

	if a.onChange != nil && v.ConfigFileUsed() != "" {
		v.OnConfigChange(a.onChange)
		v.WatchConfig()
	}
	return nil
}

// Viper returns the viper instance backing the app configuration.
func (a *App) Viper() *viper.Viper {
	return a.v
}

// EnvPrefix derives the environment variable prefix from the app name.
func EnvPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func loadEnvFiles(files ...string) error {
	for _, f := range files {
		// existing environment wins over the file
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands ${VAR} and $VAR style environment variables in config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		expanded := envPattern.ReplaceAllStringFunc(strVal, func(match string) string {
			var varName string
			if strings.HasPrefix(match, "${") {
				varName = match[2 : len(match)-1]
			} else {
				varName = match[1:]
			}
			if envVal := os.Getenv(varName); envVal != "" {
				return envVal
			}
			return match // 保留原样，如果环境变量不存在
		})
		if expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// Run executes the application.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command returns the cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// GetVersion returns the git version injected at build time.
func GetVersion() string {
	return version.Get().GitVersion
}
