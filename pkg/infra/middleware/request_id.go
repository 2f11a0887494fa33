// Package middleware provides the gin middleware chain of the HTTP surface.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sentinel-weather/pkg/infra/middleware/common"
)

// HeaderXRequestID is re-exported from common.
const HeaderXRequestID = common.HeaderXRequestID

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Header is the header name to use for request ID.
	// Default: "X-Request-ID"
	Header string

	// Generator is the function to generate request IDs.
	// Default: ULID
	Generator func() string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Header:    HeaderXRequestID,
	Generator: common.GenerateRequestID,
}

// RequestID returns a middleware that adds a unique request ID to each request.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with custom config.
func RequestIDWithConfig(config RequestIDConfig) gin.HandlerFunc {
	if config.Header == "" {
		config.Header = HeaderXRequestID
	}
	if config.Generator == nil {
		config.Generator = common.GenerateRequestID
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(config.Header)
		if requestID == "" {
			requestID = config.Generator()
		}

		c.Header(config.Header, requestID)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// GetRequestID returns the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return common.GetRequestID(ctx)
}
