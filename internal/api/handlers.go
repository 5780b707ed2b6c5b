package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kubefinops/insights/internal/insights"
)

const (
	apiVersion = "0.2.0"
	apiName    = "FinOps K8s Cost Optimization"
)

// processingError reports a failed request with the shared error envelope
func processingError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": fmt.Sprintf("Error processing request: %v", err),
	})
}

// getHealth returns service liveness
func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// getVersion returns API version information
func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": apiVersion,
		"api":     apiName,
	})
}

// getCostEfficiency returns per-namespace efficiency scores
func (s *Server) getCostEfficiency(c *gin.Context) {
	records, err := s.insights.CollectResources(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	results := make([]insights.EfficiencyResult, 0, len(records))
	for _, record := range records {
		results = append(results, s.insights.ScoreEfficiency(record))
	}

	c.JSON(http.StatusOK, results)
}

// getRecommendations returns optimization recommendations for all namespaces
func (s *Server) getRecommendations(c *gin.Context) {
	records, err := s.insights.CollectResources(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	recommendations := make([]insights.Recommendation, 0)
	for _, record := range records {
		recommendations = append(recommendations, s.insights.Recommend(record)...)
	}

	c.JSON(http.StatusOK, recommendations)
}

// getCostAnomalies returns cost anomaly detection results per namespace
func (s *Server) getCostAnomalies(c *gin.Context) {
	records, err := s.insights.CollectResources(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	anomalies := make([]insights.AnomalyResult, 0, len(records))
	for _, record := range records {
		anomalies = append(anomalies, s.insights.DetectAnomaly(c.Request.Context(), record.Namespace))
	}

	c.JSON(http.StatusOK, anomalies)
}

// getCostForecasts returns cost forecasts per namespace
func (s *Server) getCostForecasts(c *gin.Context) {
	records, err := s.insights.CollectResources(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	forecasts := make([]insights.ForecastResult, 0, len(records))
	for _, record := range records {
		forecasts = append(forecasts, s.insights.Forecast(c.Request.Context(), record.Namespace))
	}

	c.JSON(http.StatusOK, forecasts)
}

// getAllInsights returns the combined insight report
func (s *Server) getAllInsights(c *gin.Context) {
	report, err := s.insights.AllInsights(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// updateMetrics exists for compatibility with external schedulers. Gauges are
// refreshed by the insight handlers and the background loop.
func (s *Server) updateMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "Metrics are updated automatically with each request",
	})
}

// getPricing returns the resolved pricing model
func (s *Server) getPricing(c *gin.Context) {
	model := s.pricing.Resolve(c.Request.Context())
	c.JSON(http.StatusOK, model)
}

// getClusterSummary returns a point-in-time cluster inventory
func (s *Server) getClusterSummary(c *gin.Context) {
	if s.cluster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "cluster client not configured",
		})
		return
	}

	summary, err := s.cluster.Summary(c.Request.Context())
	if err != nil {
		processingError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
