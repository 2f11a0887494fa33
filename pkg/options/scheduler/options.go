// Package scheduler provides options for periodic refresh tasks.
package scheduler

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-weather/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 定时任务配置。
type Options struct {
	// RefreshInterval 重新拉取并对账的周期。
	RefreshInterval time.Duration `json:"refresh-interval" mapstructure:"refresh-interval"`
	// JitterInterval 演示模式下数据扰动周期。
	JitterInterval time.Duration `json:"jitter-interval" mapstructure:"jitter-interval"`
	// Demo 强制演示模式，不访问任何数据源。
	Demo bool `json:"demo" mapstructure:"demo"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		RefreshInterval: 10 * time.Minute,
		JitterInterval:  30 * time.Second,
	}
}

// AddFlags adds scheduler flags.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "scheduler."
	fs.DurationVar(&o.RefreshInterval, p+"refresh-interval", o.RefreshInterval, "Interval between live refreshes (0 disables).")
	fs.DurationVar(&o.JitterInterval, p+"jitter-interval", o.JitterInterval, "Interval between demo-mode jitter ticks (0 disables).")
	fs.BoolVar(&o.Demo, p+"demo", o.Demo, "Serve synthetic data only.")
}

// Validate validates scheduler options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("scheduler.refresh-interval must not be negative"))
	}
	if o.JitterInterval < 0 {
		errs = append(errs, fmt.Errorf("scheduler.jitter-interval must not be negative"))
	}
	return errs
}
