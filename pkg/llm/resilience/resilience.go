// Package resilience 提供远端建议调用的韧性模式：重试与熔断。
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kart-io/logger"
)

// RetryConfig 重试配置。
type RetryConfig struct {
	// MaxAttempts 最大尝试次数（包括首次调用）。
	MaxAttempts int
	// InitialDelay 初始延迟时间。
	InitialDelay time.Duration
	// MaxDelay 最大延迟时间。
	MaxDelay time.Duration
	// Multiplier 延迟倍增因子（指数退避）。
	Multiplier float64
	// RetryableErrors 可重试的错误判断函数。
	RetryableErrors func(error) bool
}

// DefaultRetryConfig 返回默认重试配置。
// 建议生成有严格的时延预算，默认只尝试一次。
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     1,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		Multiplier:      2.0,
		RetryableErrors: IsRetryableError,
	}
}

// CircuitBreakerConfig 熔断器配置。
type CircuitBreakerConfig struct {
	// MaxFailures 触发熔断的连续失败次数。
	MaxFailures int
	// Timeout 熔断器打开后进入半开前的等待时间。
	Timeout time.Duration
	// HalfOpenMaxCalls 半开状态允许的最大探测调用次数。
	HalfOpenMaxCalls int
	// Clock 时钟，测试时可注入 fake clock。
	Clock clockwork.Clock
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置。
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          60 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreakerState 熔断器状态。
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker 熔断器实现。
type CircuitBreaker struct {
	config *CircuitBreakerConfig
	clock  clockwork.Clock

	mu                sync.Mutex
	state             CircuitBreakerState
	failures          int
	lastFailureTime   time.Time
	halfOpenCalls     int
	halfOpenSuccesses int
}

// NewCircuitBreaker 创建熔断器。
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CircuitBreaker{config: config, clock: clock, state: StateClosed}
}

// ErrCircuitBreakerOpen 熔断器打开错误。
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// Execute 通过熔断器执行函数。
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.clock.Since(cb.lastFailureTime) < cb.config.Timeout {
			return ErrCircuitBreakerOpen
		}
		logger.Infow("circuit breaker transitioning to half-open")
		cb.state = StateHalfOpen
		cb.halfOpenCalls = 1
		cb.halfOpenSuccesses = 0
		return nil
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			return ErrCircuitBreakerOpen
		}
		cb.halfOpenCalls++
		return nil
	default:
		return ErrCircuitBreakerOpen
	}
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.onSuccess()
		return
	}
	cb.onFailure()
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.halfOpenCalls {
			logger.Infow("circuit breaker transitioning to closed")
			cb.state = StateClosed
			cb.failures = 0
		}
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailureTime = cb.clock.Now()

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.config.MaxFailures {
			logger.Warnw("circuit breaker opening",
				"failures", cb.failures,
				"max_failures", cb.config.MaxFailures,
			)
			cb.state = StateOpen
		}
	case StateHalfOpen:
		logger.Warnw("circuit breaker re-opening after half-open failure")
		cb.state = StateOpen
	}
}

// State 获取当前状态。
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats 熔断器统计快照。
type Stats struct {
	State           string    `json:"state"`
	Failures        int       `json:"failures"`
	LastFailureTime time.Time `json:"last_failure_time"`
}

// Stats 获取熔断器统计信息。
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{
		State:           cb.state.String(),
		Failures:        cb.failures,
		LastFailureTime: cb.lastFailureTime,
	}
}

// Reset 重置熔断器状态。
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCalls = 0
	cb.halfOpenSuccesses = 0
}

// RetryWithBackoff 使用指数退避重试函数。
func RetryWithBackoff(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	retryable := config.RetryableErrors
	if retryable == nil {
		retryable = IsRetryableError
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := config.InitialDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt >= attempts {
			if attempts == 1 {
				return err
			}
			logger.Warnw("max retry attempts reached", "attempts", attempt, "error", err.Error())
			return fmt.Errorf("max retry attempts (%d) reached: %w", attempts, err)
		}

		logger.Debugw("retrying after delay", "attempt", attempt, "delay", delay, "error", err.Error())
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
}

// RetryWithCircuitBreaker 结合重试和熔断器执行函数。
func RetryWithCircuitBreaker(ctx context.Context, retryConfig *RetryConfig, cb *CircuitBreaker, fn func() error) error {
	return RetryWithBackoff(ctx, retryConfig, func() error {
		return cb.Execute(fn)
	})
}
