package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DebugHint replaces error details outside debug mode.
const DebugHint = "Enable DEBUG mode for detailed error information"

// WithRecovery turns a handler panic into a 500. The stack trace is
// returned to the client only when showDetails is set.
func WithRecovery(logger *zap.Logger, showDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("handler panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", stack),
				)

				details := DebugHint
				if showDetails {
					details = fmt.Sprintf("%v\n%s", r, stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal server error",
					"details": details,
				})
			}
		}()
		c.Next()
	}
}
