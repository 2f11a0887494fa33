// Package server provides HTTP server configuration options.
package server

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-weather/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains HTTP server configuration.
type Options struct {
	// Addr is the address to listen on.
	Addr string `json:"addr" mapstructure:"addr"`
	// Mode is the gin mode (debug, release, test).
	Mode         string        `json:"mode" mapstructure:"mode"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Addr:            ":8090",
		Mode:            "release",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// AddFlags adds flags for server options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "server."
	fs.StringVar(&o.Addr, p+"addr", o.Addr, "Specify the HTTP server bind address and port.")
	fs.StringVar(&o.Mode, p+"mode", o.Mode, "Gin mode (debug, release, test).")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Timeout for reading the entire request.")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Timeout before timing out writes of the response.")
	fs.DurationVar(&o.IdleTimeout, p+"idle-timeout", o.IdleTimeout, "Maximum amount of time to wait for the next request.")
	fs.DurationVar(&o.ShutdownTimeout, p+"shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Validate validates the server options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr cannot be empty"))
	}
	switch o.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be one of debug, release, test"))
	}
	if o.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read-timeout must be positive"))
	}
	if o.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write-timeout must be positive"))
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown-timeout must be positive"))
	}
	return errs
}
