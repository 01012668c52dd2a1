package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"academy-app/internal/app/http/middleware"
)

const adminTokenTTL = 12 * time.Hour

type LoginConfig struct {
	Email        string
	PasswordHash string
	JWTSecret    string
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.login.Email == "" || h.login.PasswordHash == "" || h.login.JWTSecret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login not configured"})
		return
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(input.Email))),
		[]byte(strings.ToLower(h.login.Email)),
	) == 1
	if err := bcrypt.CompareHashAndPassword([]byte(h.login.PasswordHash), []byte(input.Password)); err != nil || !emailOK {
		h.log.Warn("admin login rejected", zap.String("security", "bad_credentials"), zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.SignAppToken(h.login.JWTSecret, h.login.Email, middleware.RoleAdmin, h.login.Email, adminTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
