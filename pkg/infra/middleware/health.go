package middleware

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the health status.
type HealthStatus string

const (
	// HealthStatusUp indicates the service is healthy.
	HealthStatusUp HealthStatus = "UP"
	// HealthStatusDegraded 可选检查失败，服务仍可用（例如回退到演示数据）。
	HealthStatusDegraded HealthStatus = "DEGRADED"
	// HealthStatusDown indicates the service is unhealthy.
	HealthStatusDown HealthStatus = "DOWN"
)

// defaultCheckTimeout 单次检查的默认超时
const defaultCheckTimeout = 2 * time.Second

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
	Version string                 `json:"version,omitempty"`
}

// CheckResult represents an individual health check result.
type CheckResult struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Optional bool         `json:"optional,omitempty"`
}

// HealthChecker is a function that performs a health check.
type HealthChecker func(ctx context.Context) error

type namedChecker struct {
	check    HealthChecker
	optional bool
}

// HealthManager manages health checks.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]namedChecker
	ready    bool
	version  string
	timeout  time.Duration
}

// NewHealthManager creates a new health manager.
func NewHealthManager() *HealthManager {
	return &HealthManager{
		checkers: make(map[string]namedChecker),
		ready:    true,
		timeout:  defaultCheckTimeout,
	}
}

// SetVersion sets the service version.
func (h *HealthManager) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = version
}

// RegisterChecker registers a health checker. 失败时整体状态为 DOWN。
func (h *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	h.register(name, checker, false)
}

// RegisterOptionalChecker 注册可选检查，失败时整体状态降为 DEGRADED。
func (h *HealthManager) RegisterOptionalChecker(name string, checker HealthChecker) {
	h.register(name, checker, true)
}

func (h *HealthManager) register(name string, checker HealthChecker, optional bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = namedChecker{check: checker, optional: optional}
}

// SetReady sets the readiness status.
func (h *HealthManager) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns the readiness status.
func (h *HealthManager) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Check performs all health checks.
func (h *HealthManager) Check(ctx context.Context) HealthResponse {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]namedChecker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	resp := HealthResponse{Status: HealthStatusUp, Version: h.version}
	timeout := h.timeout
	h.mu.RUnlock()

	if len(names) == 0 {
		return resp
	}
	sort.Strings(names)

	resp.Checks = make(map[string]CheckResult, len(names))
	for _, name := range names {
		c := checkers[name]
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := c.check(checkCtx)
		cancel()

		if err == nil {
			resp.Checks[name] = CheckResult{Status: HealthStatusUp, Optional: c.optional}
			continue
		}
		resp.Checks[name] = CheckResult{Status: HealthStatusDown, Message: err.Error(), Optional: c.optional}
		switch {
		case !c.optional:
			resp.Status = HealthStatusDown
		case resp.Status == HealthStatusUp:
			resp.Status = HealthStatusDegraded
		}
	}
	return resp
}

// Handler 返回健康检查端点。未就绪或必需检查失败时返回 503。
func (h *HealthManager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.IsReady() {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: HealthStatusDown, Version: h.versionString()})
			return
		}
		resp := h.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

func (h *HealthManager) versionString() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}
