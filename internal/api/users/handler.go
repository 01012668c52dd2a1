package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academy-app/internal/app/http/middleware"
	"academy-app/internal/domain/enrollments"
)

type EnrollmentReader interface {
	FindEnrollment(ctx context.Context, purchaserID, itemID string) (*enrollments.Enrollment, error)
	ListEnrollmentsByPurchaser(ctx context.Context, purchaserID string) ([]enrollments.Enrollment, error)
}

type Handler struct {
	enrollments EnrollmentReader
	log         *zap.Logger
	now         func() time.Time
}

func NewHandler(reader EnrollmentReader, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{enrollments: reader, log: log, now: time.Now}
}

func (h *Handler) GetMyEnrollments(c *gin.Context) {
	purchaserID := middleware.PurchaserID(c)
	if purchaserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.enrollments.ListEnrollmentsByPurchaser(c.Request.Context(), purchaserID)
	if err != nil {
		h.log.Error("list enrollments", zap.String("purchaser_id", purchaserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load enrollments"})
		return
	}

	now := h.now()
	resp := MeEnrollmentsResponse{PurchaserID: purchaserID, Enrollments: make([]EnrollmentDTO, 0, len(rows))}
	for _, e := range rows {
		resp.Enrollments = append(resp.Enrollments, BuildEnrollmentDTO(now, e))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetMyEnrollment(c *gin.Context) {
	purchaserID := middleware.PurchaserID(c)
	if purchaserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	e, err := h.enrollments.FindEnrollment(c.Request.Context(), purchaserID, c.Param("itemId"))
	if errors.Is(err, enrollments.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}
	if err != nil {
		h.log.Error("find enrollment", zap.String("purchaser_id", purchaserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load enrollment"})
		return
	}

	c.JSON(http.StatusOK, BuildEnrollmentDTO(h.now(), *e))
}

// ItemAccess runs behind RequireActiveEnrollment, so reaching it means access
// is granted.
func (h *Handler) ItemAccess(c *gin.Context) {
	resp := gin.H{"item_id": c.Param("itemId"), "access": true}
	if v, ok := c.Get("enrollment"); ok {
		if e, ok := v.(*enrollments.Enrollment); ok && e != nil {
			resp["enrollment"] = BuildEnrollmentDTO(h.now(), *e)
		}
	}
	c.JSON(http.StatusOK, resp)
}
