// internal/handler/http.go
package handler

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SyedDaiam9101/cover-service/internal/middleware"
)

// MaxUploadBytes bounds the accepted image size
const MaxUploadBytes = 32 << 20

// ImageField is the multipart form field carrying the photograph
const ImageField = "image"

// NewRouter builds the HTTP API around h
func NewRouter(h *Handler, version string) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = MaxUploadBytes
	r.Use(
		gin.Recovery(),
		middleware.GinRequestID(),
		middleware.GinLogger(h.logger),
		middleware.GinMetrics(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if !h.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "classes": h.pipeline.Labels().Len()})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version, "go": runtime.Version()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/classify", h.classifyHTTP)
	api.GET("/predictions/:digest", h.lookupHTTP)

	return r
}

func (h *Handler) classifyHTTP(c *gin.Context) {
	file, err := c.FormFile(ImageField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"" + ImageField + "\""})
		return
	}
	if file.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is empty"})
		return
	}

	res, err := h.Predict(c.Request.Context(), data)
	if err != nil {
		_ = c.Error(err)
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) lookupHTTP(c *gin.Context) {
	digest := strings.ToLower(c.Param("digest"))
	if raw, err := hex.DecodeString(digest); err != nil || len(raw) != 16 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "digest must be 32 hex characters"})
		return
	}

	pred, err := h.Lookup(c.Request.Context(), digest)
	switch {
	case errors.Is(err, ErrCacheDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case pred == nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "no prediction for " + digest})
	default:
		c.JSON(http.StatusOK, Result{Prediction: pred, Cached: true})
	}
}
