package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/service"
	"kitchen-analytics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Recommender answers combo recommendation requests
type Recommender interface {
	Recommend(ctx context.Context, itemID string, topN int) (*service.ComboResult, error)
}

// Forecaster answers ingredient forecast requests
type Forecaster interface {
	Forecast(ctx context.Context) (*service.ForecastResult, error)
}

// ReadinessCheck is a dependency probed by /ready
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	recommender Recommender
	forecaster  Forecaster
	checks      []ReadinessCheck
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(recommender Recommender, forecaster Forecaster, checks ...ReadinessCheck) *Handler {
	return &Handler{
		recommender: recommender,
		forecaster:  forecaster,
		checks:      checks,
		logger:      util.ComponentLogger("api"),
	}
}

// ComboRequest is the body of a combo recommendation request
type ComboRequest struct {
	FoodID models.DocID `json:"food_id"`
	TopN   int          `json:"top_n" binding:"omitempty,min=1,max=20"`
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/recommend/combo", h.recommendCombo)
		api.GET("/forecast/ingredients", h.forecastIngredients)
	}
}

// WithCORS wraps the router with the allowed browser origins
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	})(next)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports not ready while any dependency fails to answer
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", check.Name), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": check.Name,
				"time":       time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// recommendCombo handles combo recommendation requests
func (h *Handler) recommendCombo(c *gin.Context) {
	var req ComboRequest

	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), string(req.FoodID), req.TopN)
	if errors.Is(err, service.ErrMissingItemID) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing food_id in request body",
		})
		return
	}
	if err != nil {
		h.logger.Error("Combo recommendation failed",
			zap.String("food_id", string(req.FoodID)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Error processing recommendation",
		})
		return
	}

	c.JSON(http.StatusOK, presentCombo(result))
}

// forecastIngredients handles ingredient forecast requests
func (h *Handler) forecastIngredients(c *gin.Context) {
	result, err := h.forecaster.Forecast(c.Request.Context())
	if err != nil {
		h.logger.Error("Ingredient forecast failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Error processing forecast",
		})
		return
	}

	c.JSON(http.StatusOK, presentForecast(result))
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
