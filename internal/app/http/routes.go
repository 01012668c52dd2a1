package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adminapi "academy-app/internal/api/admin"
	"academy-app/internal/api/billing"
	mediaapi "academy-app/internal/api/media"
	stripewebhooks "academy-app/internal/api/stripewebhook"
	"academy-app/internal/api/users"
	"academy-app/internal/app/http/middleware"
)

// Deps are the handlers and middleware built once in main.
type Deps struct {
	Auth        *middleware.Authenticator
	Billing     *billing.Handler
	Media       *mediaapi.Handler
	Users       *users.Handler
	Admin       *adminapi.Handler
	Webhook     *stripewebhooks.Handler
	Enrollments middleware.EnrollmentFinder
	Limiter     middleware.VerifyLimiter
	Metrics     http.Handler
	Log         *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	if d.Webhook != nil {
		r.POST("/webhook/stripe", d.Webhook.StripeWebhook)
	}

	r.GET("/media/signed-url", d.Media.SignedURL)

	// Payment ids feed the signature and the enrollment key, so they are
	// read exactly as sent.
	r.POST("/payments/orders", d.Billing.CreateOrder)
	r.POST("/payments/verify", middleware.RateLimit(d.Limiter, d.Log), d.Billing.VerifyPayment)

	// Input sanitization on public JSON routes only
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/admin/login", d.Admin.Login)

	// Authenticated purchaser
	auth := r.Group("/")
	auth.Use(d.Auth.Middleware())
	auth.GET("/me/enrollments", d.Users.GetMyEnrollments)
	auth.GET("/me/enrollments/:itemId", d.Users.GetMyEnrollment)
	auth.GET("/me/payments", d.Billing.GetPaymentHistory)
	auth.GET("/items/:itemId/access", middleware.RequireActiveEnrollment(d.Enrollments), d.Users.ItemAccess)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(d.Auth.Middleware(), middleware.RequireRole(middleware.RoleAdmin))
	admin.GET("/payments", d.Admin.ListAllPayments)
	admin.GET("/enrollments", d.Admin.ListAllEnrollments)
	admin.GET("/stats", d.Admin.GetStats)
	admin.POST("/reconcile", d.Admin.Reconcile)
	admin.POST("/media", d.Media.Upload)
}
