// Package openai 注册 OpenAI Chat 供应商，也适用于 Azure OpenAI、LocalAI 等兼容服务。
//
//	provider, err := llm.NewChatProvider("openai", map[string]any{
//	    "api_key":    "your-api-key",
//	    "chat_model": "gpt-4o-mini",
//	})
package openai

import (
	"time"

	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/llm/compat"
)

// ProviderName 是 OpenAI 供应商的名称标识符
const ProviderName = "openai"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// DefaultConfig 返回默认配置，温度与 token 上限使用服务端默认值。
func DefaultConfig() compat.Config {
	return compat.Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 10 * time.Second,
	}
}

// NewProvider 从配置 map 创建 OpenAI 供应商，支持可选的 organization。
func NewProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg, err := compat.ParseConfig(ProviderName, configMap, DefaultConfig())
	if err != nil {
		return nil, err
	}
	if org, ok := configMap["organization"].(string); ok && org != "" {
		cfg.Headers = map[string]string{"OpenAI-Organization": org}
	}
	return compat.New(ProviderName, cfg), nil
}
