package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food-quality-api/internal/config"
	apperrors "food-quality-api/internal/errors"
	"food-quality-api/internal/logger"
	"food-quality-api/internal/service"
	"food-quality-api/internal/storage"
	"food-quality-api/pkg/models"
)

// NewHandler configures the gin router over the assessment service
func NewHandler(svc service.AssessmentService, uploads storage.UploadReader, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxUploadSize + 1024*1024))

	r.GET("/", capabilities)
	r.GET("/health", healthCheck)
	r.GET("/info/:food_name", foodInfo(svc, cfg))
	r.POST("/predict", predict(svc, uploads, cfg))
	r.POST("/predict/text", predictText(svc, cfg))
	r.POST("/predict/stats", predictStats(svc, uploads, cfg))
	r.POST("/predict/ollama", predictOllama(svc, uploads, cfg))
	r.POST("/predict/gemini", predictVision(svc, uploads, cfg))

	return r
}

func predict(svc service.AssessmentService, uploads storage.UploadReader, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		name := c.PostForm("name")
		if name == "" {
			respondError(c, http.StatusBadRequest, "missing food name",
				apperrors.NewValidationError("form field 'name' is required", nil))
			return
		}

		upload, err := readUploadedFile(c, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image upload", err)
			return
		}

		resp := svc.AssessUpload(ctx, upload, name)

		logger.WithFields(logrus.Fields{
			"food_name":          name,
			"assessment":         resp.Assessment,
			"confidence":         resp.Confidence,
			"mold_percentage":    resp.VisualFeatures.MoldPercentage,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Food quality assessment completed")

		c.JSON(http.StatusOK, resp)
	}
}

func foodInfo(svc service.AssessmentService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		name := c.Param("food_name")
		profile := svc.FoodInfo(ctx, name)

		c.JSON(http.StatusOK, gin.H{
			"food_name":      name,
			"reference_data": profile,
		})
	}
}

func predictText(svc service.AssessmentService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.TextPredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format",
				apperrors.NewValidationError("body must be JSON with food, hours_old, storage", err))
			return
		}

		c.JSON(http.StatusOK, svc.AssessText(ctx, req))
	}
}

func predictStats(svc service.AssessmentService, uploads storage.UploadReader, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		upload, err := readUploadedFile(c, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image upload", err)
			return
		}

		resp, err := svc.StatsWithText(ctx, upload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "stats completion failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func predictOllama(svc service.AssessmentService, uploads storage.UploadReader, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		upload, err := readUploadedFile(c, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image upload", err)
			return
		}

		resp, err := svc.StatsWithOllama(ctx, upload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "local model completion failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func predictVision(svc service.AssessmentService, uploads storage.UploadReader, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		upload, err := readUploadedFile(c, uploads)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image upload", err)
			return
		}

		resp, err := svc.StatsWithVision(ctx, upload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "vision completion failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func readUploadedFile(c *gin.Context, uploads storage.UploadReader) (*storage.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewValidationError("form field 'file' is required", err)
	}
	return uploads.ReadUpload(fh)
}

func capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api":     "Food Quality Assessment API",
		"version": "1.0.0",
		"endpoints": []gin.H{
			{"path": "/predict", "method": "POST", "description": "Assess food quality from image"},
			{"path": "/predict/text", "method": "POST", "description": "Assess food quality from metadata"},
			{"path": "/predict/stats", "method": "POST", "description": "Image stats with hosted text model"},
			{"path": "/predict/ollama", "method": "POST", "description": "Image stats with local model"},
			{"path": "/predict/gemini", "method": "POST", "description": "Image stats with vision model"},
			{"path": "/info/{food_name}", "method": "GET", "description": "Get reference data for food"},
		},
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
