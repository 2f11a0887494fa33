// Package compat 实现 OpenAI 兼容的 /chat/completions 调用，DeepSeek、OpenAI 等供应商共用。
package compat

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

// Config 兼容接口配置。
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Temperature 为 nil 时不发送，使用服务端默认值
	Temperature *float64
	MaxTokens   int
	Stop        []string
	// JSONMode 要求模型只输出 JSON 对象（response_format=json_object）
	JSONMode bool
	// Headers 额外请求头
	Headers map[string]string
}

// ParseConfig 从供应商工厂的配置 map 覆盖 defaults，api_key 必填。
func ParseConfig(name string, m map[string]any, defaults Config) (Config, error) {
	cfg := defaults
	if v, ok := m["base_url"].(string); ok && v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := m["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := m["chat_model"].(string); ok && v != "" {
		cfg.Model = v
	}
	if v, ok := m["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := m["max_retries"].(int); ok && v >= 0 {
		cfg.MaxRetries = v
	}
	if v, ok := m["temperature"].(float64); ok {
		cfg.Temperature = &v
	}
	if v, ok := m["max_tokens"].(int); ok && v > 0 {
		cfg.MaxTokens = v
	}
	if v, ok := m["json_mode"].(bool); ok {
		cfg.JSONMode = v
	}
	switch v := m["stop"].(type) {
	case []string:
		cfg.Stop = v
	case []interface{}:
		cfg.Stop = make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				cfg.Stop = append(cfg.Stop, s)
			}
		}
	}

	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("%s: api_key 是必需的", name)
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return cfg, fmt.Errorf("%s: base_url 与 chat_model 不能为空", name)
	}
	return cfg, nil
}

// Client 兼容接口客户端，实现 llm.ChatProvider。
type Client struct {
	name   string
	cfg    Config
	client *httpclient.Client
}

var _ llm.ChatProvider = (*Client)(nil)

// New creates a Client reporting itself as name.
func New(name string, cfg Config, opts ...httpclient.Option) *Client {
	return &Client{
		name:   name,
		cfg:    cfg,
		client: httpclient.NewClient(cfg.Timeout, cfg.MaxRetries, opts...),
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Chat 发送多轮对话并返回第一条回复内容。
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    make([]chatMessage, len(messages)),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stop:        c.cfg.Stop,
	}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}
	if c.cfg.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	var resp chatResponse
	if err := c.client.DoJSON(httpReq, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: 未返回响应内容", c.name)
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate 单轮生成。
func (c *Client) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	return llm.GenerateWithRoles(ctx, c, systemPrompt, prompt)
}
