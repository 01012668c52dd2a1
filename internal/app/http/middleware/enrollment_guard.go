package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"academy-app/internal/domain/access"
	"academy-app/internal/domain/enrollments"
)

type EnrollmentFinder interface {
	FindEnrollment(ctx context.Context, purchaserID, itemID string) (*enrollments.Enrollment, error)
}

// RequireActiveEnrollment lets the request through only when the caller holds
// an unexpired, uncancelled enrollment for :itemId.
func RequireActiveEnrollment(finder EnrollmentFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		purchaserID := PurchaserID(c)
		if purchaserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID := c.Param("itemId")

		e, err := finder.FindEnrollment(c.Request.Context(), purchaserID, itemID)
		if err != nil && !errors.Is(err, enrollments.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load enrollment"})
			return
		}

		switch access.ComputeAccessState(time.Now(), e) {
		case access.AccessGranted:
			c.Set("enrollment", e)
			c.Next()
		case access.AccessExpired:
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Your access has expired"})
		case access.AccessCancelled:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Enrollment cancelled"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Enrollment not found"})
		}
	}
}
