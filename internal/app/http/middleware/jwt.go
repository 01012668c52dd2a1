package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	RoleAdmin     = "admin"
	RolePurchaser = "purchaser"

	ctxPurchaserID = "purchaser_id"
	ctxRole        = "role"
	ctxEmail       = "email"

	firebaseKeysURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// IDTokenVerifier checks third-party identity tokens.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Authenticator accepts app-issued HS256 tokens and, when configured,
// Firebase ID tokens.
type Authenticator struct {
	secret   []byte
	idTokens IDTokenVerifier
	log      *zap.Logger
}

func NewAuthenticator(secret string, idTokens IDTokenVerifier, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{secret: []byte(secret), idTokens: idTokens, log: log}
}

// NewFirebaseVerifier builds an ID-token verifier for a Firebase project.
// Keys are fetched lazily on first use.
func NewFirebaseVerifier(ctx context.Context, projectID string) *oidc.IDTokenVerifier {
	keys := oidc.NewRemoteKeySet(ctx, firebaseKeysURL)
	return oidc.NewVerifier("https://securetoken.google.com/"+projectID, keys, &oidc.Config{ClientID: projectID})
}

// SignAppToken issues the HS256 token understood by Authenticator.
func SignAppToken(secret, subject, role, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"role":  role,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.secret) == 0 && a.idTokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		if a.fromAppToken(c, tokenString) || a.fromIDToken(c, tokenString) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	}
}

func (a *Authenticator) fromAppToken(c *gin.Context, raw string) bool {
	if len(a.secret) == 0 {
		return false
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return false
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RolePurchaser
	}
	email, _ := claims["email"].(string)

	c.Set(ctxPurchaserID, sub)
	c.Set(ctxRole, role)
	c.Set(ctxEmail, email)
	return true
}

func (a *Authenticator) fromIDToken(c *gin.Context, raw string) bool {
	if a.idTokens == nil {
		return false
	}
	idToken, err := a.idTokens.Verify(c.Request.Context(), raw)
	if err != nil {
		a.log.Debug("id token rejected", zap.Error(err))
		return false
	}

	var claims struct {
		Email string `json:"email"`
	}
	_ = idToken.Claims(&claims)

	c.Set(ctxPurchaserID, idToken.Subject)
	c.Set(ctxRole, RolePurchaser)
	c.Set(ctxEmail, claims.Email)
	return true
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ctxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}

// PurchaserID returns the authenticated subject, or "" on public routes.
func PurchaserID(c *gin.Context) string {
	return c.GetString(ctxPurchaserID)
}
