package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"academy-app/config"
	"academy-app/database"
	adminapi "academy-app/internal/api/admin"
	"academy-app/internal/api/billing"
	mediaapi "academy-app/internal/api/media"
	stripewebhooks "academy-app/internal/api/stripewebhook"
	"academy-app/internal/api/users"
	routes "academy-app/internal/app/http"
	"academy-app/internal/app/http/middleware"
	"academy-app/internal/infra/logger"
	"academy-app/internal/infra/metrics"
	"academy-app/internal/infra/razorpay"
	"academy-app/internal/infra/s3"
	stripeinfra "academy-app/internal/infra/stripe"
	"academy-app/internal/repo/postgres"
	redisrepo "academy-app/internal/repo/redis"
	"academy-app/internal/services/media"
	"academy-app/internal/services/payments"
	"academy-app/internal/services/rate"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal("create logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBURL, zl)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	repo := postgres.NewEnrollmentRepo(db)
	m := metrics.New()

	var gateway payments.Gateway
	switch {
	case !cfg.Gateway.Configured():
		zl.Warn("payment gateway credentials missing, order creation disabled",
			zap.String("kind", "configuration"),
			zap.String("provider", cfg.Gateway.Provider),
		)
	case cfg.Gateway.Provider == config.GatewayStripe:
		gateway = stripeinfra.NewGateway(cfg.Gateway.StripeSecretKey, nil)
	default:
		gateway = razorpay.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	}

	orders := payments.NewOrderService(gateway, zl.Named("orders"))
	verifier := payments.NewVerifier(cfg.Gateway.KeySecret, repo, zl.Named("verifier"))
	reconciler := payments.NewReconciler(repo, verifier, zl.Named("reconcile"))

	var (
		signer media.ObjectSigner
		writer media.ObjectWriter
		bucket string
		check  bool
	)
	if cfg.Storage != nil {
		store, err := s3.NewStore(*cfg.Storage)
		if err != nil {
			zl.Fatal("create s3 store", zap.Error(err))
		}
		signer, writer = store, store
		bucket, check = cfg.Storage.Bucket, cfg.Storage.CheckObjects
	} else {
		zl.Warn("object storage credentials missing, media URLs pass through unsigned", zap.String("kind", "configuration"))
	}
	issuer := media.NewIssuer(signer, media.IssuerOptions{Bucket: bucket, CheckObjects: check, Classify: s3.Classify}, zl.Named("media"))
	uploader := media.NewUploader(writer)

	var limiter middleware.VerifyLimiter
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("redis unreachable, verify rate limit fails open", zap.Error(err))
		}
		cancel()
		limiter = rate.NewLimiter(redisrepo.NewRateRepo(rdb), cfg.Redis.VerifyPerMinute)
	}

	var idTokens middleware.IDTokenVerifier
	if cfg.FirebaseProjectID != "" {
		idTokens = middleware.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
	}

	var webhook *stripewebhooks.Handler
	if cfg.Gateway.StripeWebhookSecret != "" {
		webhook = stripewebhooks.NewHandler(cfg.Gateway.StripeWebhookSecret, verifier, m, zl.Named("stripe"))
	}

	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zl.Fatal("trusted proxies", zap.Error(err))
	}

	// CORS before routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:    middleware.NewAuthenticator(cfg.JWTSecret, idTokens, zl.Named("auth")),
		Billing: billing.NewHandler(orders, verifier, repo, m, zl.Named("billing")),
		Media:   mediaapi.NewHandler(issuer, uploader, m, zl.Named("media")),
		Users:   users.NewHandler(repo, zl.Named("users")),
		Admin: adminapi.NewHandler(repo, reconciler, adminapi.LoginConfig{
			Email:        cfg.Admin.Email,
			PasswordHash: cfg.Admin.PasswordHash,
			JWTSecret:    cfg.JWTSecret,
		}, zl.Named("admin")),
		Webhook:     webhook,
		Enrollments: repo,
		Limiter:     limiter,
		Metrics:     m.Handler(),
		Log:         zl,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("shutdown http server", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	}
}
