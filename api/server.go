package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Aidin1998/sanctions_matcher/common/apiutil"
	"github.com/Aidin1998/sanctions_matcher/internal/audit"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Screener is the screening surface exposed over HTTP.
type Screener interface {
	Compare(ctx context.Context, name1, name2 string, threshold float64) (*screening.CompareResult, error)
	BulkCompare(ctx context.Context, req screening.BulkRequest) (*screening.BulkResult, error)
	TopMatch(ctx context.Context, name, country string, threshold float64) (*screening.CompareResult, error)
	LookupSimilar(ctx context.Context, name, country string) ([]screening.SimilarRecord, error)
	Config() screening.ServiceConfig
}

// PredictionLister reads back recorded decisions.
type PredictionLister interface {
	Recent(ctx context.Context, limit int) ([]audit.PredictionLog, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Options holds optional server collaborators.
type Options struct {
	AllowedOrigins []string
	// Predictions enables GET /api/v1/predictions when set.
	Predictions PredictionLister
	// HealthChecks are run by GET /api/v1/health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// Server represents the API server
type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	screener    Screener
	predictions PredictionLister
	health      map[string]HealthCheck
	validator   *apiutil.Validator
}

// NewServer creates a new API server around the screening service
func NewServer(logger *zap.Logger, screener Screener, opts Options) *Server {
	server := &Server{
		logger:      logger,
		screener:    screener,
		predictions: opts.Predictions,
		health:      opts.HealthChecks,
		validator:   apiutil.NewValidator(),
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("sanctions-matcher"))
	router.Use(apiutil.RequestIDMiddleware(audit.WithRequestID))
	router.Use(apiutil.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", apiutil.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", apiutil.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(apiutil.RFC7807ErrorMiddleware())

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	public := s.router.Group("/api/v1")
	{
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.GET("/health", s.healthCheck)

		predict := public.Group("/predict_match")
		{
			predict.POST("", s.predictMatch)
			predict.POST("/bulk", s.bulkMatch)
			predict.POST("/top", s.topMatch)
		}

		public.GET("/matches", s.getMatches)

		if s.predictions != nil {
			public.GET("/predictions", s.listPredictions)
		}
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.health))
	for name, check := range s.health {
		if err := check(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{
		"status": "ok",
		"time":   time.Now(),
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	c.JSON(status, body)
}
