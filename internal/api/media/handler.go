package media

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"academy-app/internal/infra/metrics"
	"academy-app/internal/services/media"
)

const maxUploadBytes = 50 << 20

type Handler struct {
	issuer   *media.Issuer
	uploader *media.Uploader
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewHandler(issuer *media.Issuer, uploader *media.Uploader, m *metrics.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = &metrics.Metrics{}
	}
	return &Handler{issuer: issuer, uploader: uploader, metrics: m, log: log}
}

// SignedURL answers GET /media/signed-url?key=. Without storage credentials it
// returns the locator unchanged, unless strict=true is passed.
func (h *Handler) SignedURL(c *gin.Context) {
	locator := c.Query("key")
	if locator == "" {
		metrics.Inc(h.metrics.SignedURLs, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing key parameter"})
		return
	}
	strict, _ := strconv.ParseBool(c.Query("strict"))

	if strict && !h.issuer.Configured() {
		metrics.Inc(h.metrics.SignedURLs, "not_configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object storage not configured"})
		return
	}

	signed, err := h.issuer.Sign(c.Request.Context(), locator)
	if err != nil {
		var signErr *media.SignError
		switch {
		case errors.Is(err, media.ErrValidation):
			metrics.Inc(h.metrics.SignedURLs, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key parameter"})
		case errors.As(err, &signErr):
			metrics.Inc(h.metrics.SignedURLs, string(signErr.Kind))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to generate signed URL",
				"details": signErr.Message(),
				"kind":    signErr.Kind,
				"url":     signed.URL,
			})
		default:
			metrics.Inc(h.metrics.SignedURLs, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate signed URL", "details": err.Error(), "url": signed.URL})
		}
		return
	}

	if signed.Signed {
		metrics.Inc(h.metrics.SignedURLs, "ok")
	} else {
		metrics.Inc(h.metrics.SignedURLs, "passthrough")
	}
	c.JSON(http.StatusOK, signed)
}

// Upload stores a multipart "file" under the "folder" form field.
func (h *Handler) Upload(c *gin.Context) {
	if !h.uploader.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object storage not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file", "details": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file", "details": err.Error()})
		return
	}
	defer f.Close()

	folder := c.DefaultPostForm("folder", "uploads")
	key, err := h.uploader.Upload(c.Request.Context(), folder, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, media.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload", "details": err.Error()})
			return
		}
		h.log.Error("media upload failed", zap.String("folder", folder), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key})
}
