package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academy-app/internal/domain/billing"
	"academy-app/internal/domain/enrollments"
	"academy-app/internal/repo/postgres"
	"academy-app/internal/services/payments"
)

type Store interface {
	ListPayments(ctx context.Context, page postgres.Page) ([]billing.Payment, int64, error)
	ListEnrollments(ctx context.Context, status enrollments.Status, page postgres.Page) ([]enrollments.Enrollment, int64, error)
	Stats(ctx context.Context) (postgres.Stats, error)
}

type Reconciler interface {
	Run(ctx context.Context, fix bool, limit int) (payments.ReconcileReport, error)
}

type Handler struct {
	store      Store
	reconciler Reconciler
	login      LoginConfig
	log        *zap.Logger
}

func NewHandler(store Store, reconciler Reconciler, login LoginConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, reconciler: reconciler, login: login, log: log}
}

type AdminPayment struct {
	ID               string  `json:"id"`
	PurchaserID      string  `json:"purchaser_id"`
	ItemID           string  `json:"item_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	GatewayOrderID   string  `json:"gateway_order_id"`
	GatewayPaymentID string  `json:"gateway_payment_id"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

func pageFromQuery(c *gin.Context) postgres.Page {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return postgres.Page{Limit: limit, Offset: offset}
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	rows, total, err := h.store.ListPayments(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		h.log.Error("admin list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(rows))
	for _, p := range rows {
		out = append(out, AdminPayment{
			ID:               p.ID,
			PurchaserID:      p.PurchaserID,
			ItemID:           p.ItemID,
			Amount:           p.Amount,
			Currency:         p.Currency,
			GatewayOrderID:   p.GatewayOrderID,
			GatewayPaymentID: p.GatewayPaymentID,
			Status:           p.Status,
			CreatedAt:        p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"payments": out, "total": total})
}

func (h *Handler) ListAllEnrollments(c *gin.Context) {
	status := enrollments.Status(c.Query("status"))
	switch status {
	case "", enrollments.StatusActive, enrollments.StatusExpired, enrollments.StatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}

	rows, total, err := h.store.ListEnrollments(c.Request.Context(), status, pageFromQuery(c))
	if err != nil {
		h.log.Error("admin list enrollments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load enrollments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enrollments": rows, "total": total})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.log.Error("admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reconcile is a dry run unless fix=true.
func (h *Handler) Reconcile(c *gin.Context) {
	fix, _ := strconv.ParseBool(c.Query("fix"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	report, err := h.reconciler.Run(c.Request.Context(), fix, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconcile failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
