// Package redis provides Redis connection options for the snapshot store.
package redis

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-weather/pkg/options"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

var _ options.IOptions = (*Options)(nil)

// redactedPassword is the placeholder used when serializing passwords.
const redactedPassword = "[REDACTED]"

// Options defines configuration options for Redis.
type Options struct {
	// Enabled 关闭时最近一次成功快照只保存在进程内存中。
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	Password     string        `json:"-" mapstructure:"password"`
	Database     int           `json:"database" mapstructure:"database"`
	MaxRetries   int           `json:"max-retries" mapstructure:"max-retries"`
	PoolSize     int           `json:"pool-size" mapstructure:"pool-size"`
	DialTimeout  time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	// KeyPrefix 快照键前缀。
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
	// SnapshotTTL 快照过期时间，0 表示与刷新周期一致。
	SnapshotTTL time.Duration `json:"snapshot-ttl" mapstructure:"snapshot-ttl"`
}

type optionsForJSON struct {
	Enabled     bool          `json:"enabled"`
	Addr        string        `json:"addr"`
	Password    string        `json:"password"`
	Database    int           `json:"database"`
	KeyPrefix   string        `json:"key-prefix"`
	SnapshotTTL time.Duration `json:"snapshot-ttl"`
}

// MarshalJSON implements json.Marshaler with password redaction.
func (o *Options) MarshalJSON() ([]byte, error) {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}
	return json.Marshal(optionsForJSON{
		Enabled:     o.Enabled,
		Addr:        o.Addr(),
		Password:    password,
		Database:    o.Database,
		KeyPrefix:   o.KeyPrefix,
		SnapshotTTL: o.SnapshotTTL,
	})
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}
	return fmt.Sprintf("Redis{addr=%s, password=%s, database=%d}", o.Addr(), password, o.Database)
}

// Addr returns host:port.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:      false,
		Host:         "127.0.0.1",
		Port:         6379,
		Database:     0,
		MaxRetries:   3,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		KeyPrefix:    "sentinel-weather:",
	}
}

// Complete 未显式配置密码时从 REDIS_PASSWORD 读取。
func (o *Options) Complete() {
	if o.Password == "" {
		o.Password = os.Getenv("REDIS_PASSWORD")
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("redis.host is required when redis is enabled"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis.port must be within 1-65535, got %d", o.Port))
	}
	if o.SnapshotTTL < 0 {
		errs = append(errs, fmt.Errorf("redis.snapshot-ttl must not be negative"))
	}
	return errs
}

// AddFlags adds flags for Redis options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "redis."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Persist the last good snapshot in Redis")
	fs.StringVar(&o.Host, p+"host", o.Host, "Redis host")
	fs.IntVar(&o.Port, p+"port", o.Port, "Redis port")
	fs.StringVar(&o.Password, p+"password", o.Password, "Redis password (prefer REDIS_PASSWORD env var)")
	fs.IntVar(&o.Database, p+"database", o.Database, "Redis database")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Redis max retries")
	fs.IntVar(&o.PoolSize, p+"pool-size", o.PoolSize, "Redis pool size")
	fs.DurationVar(&o.DialTimeout, p+"dial-timeout", o.DialTimeout, "Redis dial timeout")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Redis read timeout")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Redis write timeout")
	fs.StringVar(&o.KeyPrefix, p+"key-prefix", o.KeyPrefix, "Key prefix for snapshot entries")
	fs.DurationVar(&o.SnapshotTTL, p+"snapshot-ttl", o.SnapshotTTL, "Expiry of stored snapshots (0 follows the refresh interval)")
}
