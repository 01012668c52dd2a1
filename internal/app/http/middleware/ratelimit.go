package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VerifyLimiter interface {
	AllowVerify(ctx context.Context, clientKey string) (int64, bool, error)
}

// RateLimit fails open when the limiter store is unavailable.
func RateLimit(limiter VerifyLimiter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		retryAfter, allowed, err := limiter.AllowVerify(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many verification attempts",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
