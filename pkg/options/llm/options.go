// Package llm provides remote advisory provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-weather/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义远端建议生成供应商配置。
// APIKey 为空时不创建远端供应商，建议直接走启发式规则。
type ProviderOptions struct {
	// Provider 供应商名称（deepseek, openai）。
	Provider string `json:"provider" mapstructure:"provider"`

	BaseURL string `json:"base-url" mapstructure:"base-url"`

	APIKey string `json:"-" mapstructure:"api-key"`

	Model string `json:"model" mapstructure:"model"`

	// Timeout 单次远端调用的时延预算。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	// JSONMode 请求 response_format=json_object，要求模型只输出 JSON。
	JSONMode bool `json:"json-mode" mapstructure:"json-mode"`

	// BreakerFailures 连续失败多少次后熔断，0 表示不启用熔断。
	BreakerFailures int `json:"breaker-failures" mapstructure:"breaker-failures"`

	// BreakerCooldown 熔断打开后的冷却时间。
	BreakerCooldown time.Duration `json:"breaker-cooldown" mapstructure:"breaker-cooldown"`
}

// NewProviderOptions 创建默认配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:        "deepseek",
		BaseURL:         "https://api.deepseek.com",
		Model:           "deepseek-chat",
		Timeout:         10 * time.Second,
		MaxRetries:      0,
		Temperature:     0.7,
		MaxTokens:       500,
		JSONMode:        true,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
	}
}

// Enabled 是否配置了远端供应商。
func (o *ProviderOptions) Enabled() bool {
	return o != nil && o.APIKey != ""
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"chat_model":  o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
		"temperature": o.Temperature,
		"max_tokens":  o.MaxTokens,
		"json_mode":   o.JSONMode,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "llm."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "Advisory LLM provider (deepseek, openai).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "LLM API key. Empty disables the remote provider.")
	fs.StringVar(&o.Model, p+"model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Per-call latency budget for the remote provider.")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Transport-level retries for the remote provider.")
	fs.Float64Var(&o.Temperature, p+"temperature", o.Temperature, "Sampling temperature.")
	fs.IntVar(&o.MaxTokens, p+"max-tokens", o.MaxTokens, "Maximum tokens per completion.")
	fs.BoolVar(&o.JSONMode, p+"json-mode", o.JSONMode, "Ask the model for a bare JSON object (response_format=json_object).")
	fs.IntVar(&o.BreakerFailures, p+"breaker-failures", o.BreakerFailures, "Consecutive failures before the circuit opens (0 disables).")
	fs.DurationVar(&o.BreakerCooldown, p+"breaker-cooldown", o.BreakerCooldown, "How long the circuit stays open.")
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Provider {
	case "deepseek", "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be one of deepseek, openai, got %q", o.Provider))
	}
	if o.Enabled() && o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("llm.base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("llm.model is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive"))
	}
	if o.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max-retries must not be negative"))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within [0, 2]"))
	}
	return errs
}
