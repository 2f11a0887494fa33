package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kart-io/sentinel-weather/pkg/llm"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
)

// ResilientChatProvider 带重试与熔断的 Chat Provider 包装器。
type ResilientChatProvider struct {
	provider llm.ChatProvider
	retry    *RetryConfig
	cb       *CircuitBreaker
}

// NewResilientChatProvider 创建带韧性功能的 Chat Provider。
func NewResilientChatProvider(provider llm.ChatProvider, retryConfig *RetryConfig, cbConfig *CircuitBreakerConfig) *ResilientChatProvider {
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	}
	if retryConfig.RetryableErrors == nil {
		retryConfig.RetryableErrors = IsRetryableError
	}
	return &ResilientChatProvider{
		provider: provider,
		retry:    retryConfig,
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Chat 进行多轮对话（带重试和熔断）。
func (r *ResilientChatProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var result string
	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var err error
		result, err = r.provider.Chat(ctx, messages)
		return err
	})
	return result, err
}

// Generate 根据提示生成文本（带重试和熔断）。
func (r *ResilientChatProvider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	var result string
	err := RetryWithCircuitBreaker(ctx, r.retry, r.cb, func() error {
		var err error
		result, err = r.provider.Generate(ctx, prompt, systemPrompt)
		return err
	})
	return result, err
}

// Name 返回供应商名称。
func (r *ResilientChatProvider) Name() string {
	return r.provider.Name() + "-resilient"
}

// IsRetryableError 判断错误是否可重试。
// 网络错误、408、429 与 5xx 可重试；熔断、取消与其它 4xx 不可重试。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitBreakerOpen) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// GetChatProviderStats 获取 Chat Provider 熔断统计，非韧性包装返回 nil。
func GetChatProviderStats(provider llm.ChatProvider) *Stats {
	if rp, ok := provider.(*ResilientChatProvider); ok {
		s := rp.cb.Stats()
		return &s
	}
	return nil
}
