package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
)

type Config struct {
	Port       string
	DBURL      string
	JWTSecret  string
	CORSOrigin string
	AppEnv     string
	LogLevel   string

	// Proxies allowed to set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string

	Gateway GatewayConfig
	// nil when any of region/access key/secret key/bucket is missing.
	Storage *StorageConfig
	Redis   RedisConfig
	Admin   AdminConfig

	FirebaseProjectID string
}

type GatewayConfig struct {
	Provider  string
	KeyID     string
	KeySecret string
	BaseURL   string

	StripeSecretKey     string
	StripeWebhookSecret string
}

// Configured reports whether the selected provider has credentials.
func (g GatewayConfig) Configured() bool {
	if g.Provider == GatewayStripe {
		return g.StripeSecretKey != ""
	}
	return g.KeyID != "" && g.KeySecret != ""
}

type StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Endpoint  string
	UseSSL    bool
	KMSKeyID  string

	// CheckObjects makes the signer stat the object before signing so that
	// missing keys and denied reads surface as errors.
	CheckObjects bool
}

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	VerifyPerMinute int
}

type AdminConfig struct {
	Email        string
	PasswordHash string
}

func LoadEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	dbURL, err := mustEnv("DB_URL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DBURL:      dbURL,
		JWTSecret:  getEnv("JWT_SECRET", ""),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		AppEnv:     getEnv("APP_ENV", "dev"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),

		Gateway: GatewayConfig{
			Provider:            strings.ToLower(getEnv("PAYMENT_GATEWAY", GatewayRazorpay)),
			KeyID:               firstEnv("RAZORPAY_KEY_ID", "NEXT_PUBLIC_RAZORPAY_KEY_ID"),
			KeySecret:           getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:             getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},

		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},

		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
	}

	switch cfg.Gateway.Provider {
	case GatewayRazorpay, GatewayStripe:
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_GATEWAY %q", cfg.Gateway.Provider)
	}

	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.VerifyPerMinute, err = getEnvInt("VERIFY_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}

	cfg.Storage, err = loadStorage()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadStorage() (*StorageConfig, error) {
	region := getEnv("AWS_REGION", "")
	accessKey := getEnv("AWS_ACCESS_KEY_ID", "")
	secretKey := getEnv("AWS_SECRET_ACCESS_KEY", "")
	bucket := getEnv("AWS_S3_BUCKET_NAME", "")
	if region == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, nil
	}

	useSSL, err := getEnvBool("S3_USE_SSL", true)
	if err != nil {
		return nil, err
	}
	checkObjects, err := getEnvBool("S3_CHECK_OBJECTS", true)
	if err != nil {
		return nil, err
	}

	return &StorageConfig{
		Region:       region,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
		Bucket:       bucket,
		Endpoint:     getEnv("S3_ENDPOINT", "s3."+region+".amazonaws.com"),
		UseSSL:       useSSL,
		KMSKeyID:     getEnv("AWS_KMS_KEY_ID", ""),
		CheckObjects: checkObjects,
	}, nil
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return v, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s int: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s bool: %w", key, err)
	}
	return b, nil
}
