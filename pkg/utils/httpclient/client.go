// Package httpclient provides a reusable HTTP client with retry logic and trace propagation.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

// maxErrorBody 限制错误响应体读取长度。
const maxErrorBody = 4 << 10

// StatusError 表示上游返回了非 2xx 状态码。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Body)
}

// DecodeError 表示响应体无法解码。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "failed to decode response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// Client is a wrapper around http.Client with additional functionality.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// Option 配置 Client。
type Option func(*Client)

// WithTransport 替换底层 RoundTripper，测试中使用。
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithBackoff 设置重试基础退避时间，第 i 次重试等待 (i+1)*backoff。
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a new HTTP client wrapper.
func NewClient(timeout time.Duration, maxRetries int, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoRequest executes an HTTP request, retrying 5xx responses and transport
// errors up to maxRetries times. The request body is buffered so it can be
// replayed.
func (c *Client) DoRequest(req *http.Request) (*http.Response, error) {
	c.injectTraceContext(req)

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			if resp.StatusCode < 500 || i == c.maxRetries {
				return resp, nil
			}
			_ = resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode}
		} else {
			lastErr = err
		}

		if i < c.maxRetries {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(time.Duration(i+1) * c.backoff):
			}
		}
	}
	return nil, lastErr
}

// DoJSON executes a request and decodes a JSON response into v.
// Non-2xx responses are returned as *StatusError and undecodable bodies as *DecodeError.
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.DoRequest(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return &DecodeError{Err: err}
		}
	}
	return nil
}

// GetJSON issues a GET request with an Accept: application/json header.
func (c *Client) GetJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.DoJSON(req, v)
}

// injectTraceContext 将 W3C Trace Context 头注入到 HTTP 请求中。
// Context 中无活跃 Span 时不写入任何头。
func (c *Client) injectTraceContext(req *http.Request) {
	if req == nil || req.Context() == nil {
		return
	}
	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		return
	}
	propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
