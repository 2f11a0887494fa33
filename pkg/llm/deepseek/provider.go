// Package deepseek 注册 DeepSeek Chat 供应商，接口兼容 OpenAI 格式。
package deepseek

import (
	"time"

	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/llm/compat"
)

// ProviderName 是 DeepSeek 供应商的名称标识符
const ProviderName = "deepseek"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// DefaultConfig 返回默认配置。
func DefaultConfig() compat.Config {
	temperature := 0.7
	return compat.Config{
		BaseURL:     "https://api.deepseek.com",
		Model:       "deepseek-chat",
		Timeout:     10 * time.Second,
		Temperature: &temperature,
		MaxTokens:   500,
	}
}

// NewProvider 从配置 map 创建 DeepSeek 供应商。
func NewProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg, err := compat.ParseConfig(ProviderName, configMap, DefaultConfig())
	if err != nil {
		return nil, err
	}
	return compat.New(ProviderName, cfg), nil
}
