package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/infra/middleware/common"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace includes stack trace in error response (for development).
	EnableStackTrace bool
}

// Recovery returns a middleware that recovers from panics and converts
// them to JSON error responses using the error code system.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(RecoveryConfig{})
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			requestID := common.GetRequestID(c.Request.Context())
			logger.Errorw("panic recovered",
				"request_id", requestID,
				"path", c.Request.URL.Path,
				"panic", r,
				"stack", string(stack),
			)

			msg := fmt.Sprintf("panic: %v", r)
			if config.EnableStackTrace {
				msg += "\n" + string(stack)
			}
			e := errors.ErrPanic.WithMessage(msg)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":       e.Code,
				"message":    e.MessageEN,
				"request_id": requestID,
			})
		}()
		c.Next()
	}
}
