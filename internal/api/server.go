package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubefinops/insights/internal/cluster"
	"github.com/kubefinops/insights/internal/config"
	"github.com/kubefinops/insights/internal/insights"
	"github.com/kubefinops/insights/internal/pricing"
)

// Server handles the HTTP API for the application
type Server struct {
	router     *gin.Engine
	config     config.APIConfig
	insights   *insights.Service
	pricing    *pricing.Resolver
	cluster    *cluster.Client
	collector  MetricsCollector
	gatherer   prometheus.Gatherer
	httpServer *http.Server
}

// NewServer creates a new API server. The cluster client may be nil when no
// Kubernetes connection is available.
func NewServer(cfg config.APIConfig, insightSvc *insights.Service, resolver *pricing.Resolver, clusterClient *cluster.Client, collector MetricsCollector, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		config:    cfg,
		insights:  insightSvc,
		pricing:   resolver,
		cluster:   clusterClient,
		collector: collector,
		gatherer:  gatherer,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() {
	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware(s.config.CORSAllowedOrigins))
	r.Use(SecurityHeadersMiddleware())
	if s.collector != nil {
		r.Use(MetricsMiddleware(s.collector))
	}
	if s.config.Authentication.Enabled {
		r.Use(AuthMiddleware(s.config.Authentication.JWTKey))
	}
	if s.config.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst))
	}

	r.GET("/health", s.getHealth)
	r.GET("/version", s.getVersion)
	r.GET("/cost-efficiency", s.getCostEfficiency)
	r.GET("/recommendations", s.getRecommendations)
	r.GET("/cost-anomalies", s.getCostAnomalies)
	r.GET("/cost-forecasts", s.getCostForecasts)
	r.GET("/all-insights", s.getAllInsights)
	r.POST("/update-metrics", s.updateMetrics)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/pricing", s.getPricing)
		v1.GET("/cluster/summary", s.getClusterSummary)
	}

	s.router = r
}

// Start begins serving the API
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeoutSeconds) * time.Second,
	}

	log.Printf("Starting API server on port %d", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
