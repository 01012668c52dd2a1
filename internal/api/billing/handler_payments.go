package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academy-app/internal/app/http/middleware"
)

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	purchaserID := middleware.PurchaserID(c)
	if purchaserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments, err := h.payments.ListPaymentsByPurchaser(c.Request.Context(), purchaserID)
	if err != nil {
		h.log.Error("load payment history", zap.String("purchaser_id", purchaserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
