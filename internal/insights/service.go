package insights

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kubefinops/insights/internal/backend"
	"github.com/kubefinops/insights/internal/metrics"
	"github.com/kubefinops/insights/internal/pricing"
)

// Service computes cost insights on demand and keeps the published gauges
// warm through a background refresh loop.
type Service struct {
	ctx             context.Context
	backend         backend.Client
	publisher       *metrics.Publisher
	rates           pricing.Rates
	refreshInterval time.Duration
	stopChan        chan struct{}
}

// New creates the insight service. A non-positive refresh interval disables
// the background loop.
func New(ctx context.Context, client backend.Client, publisher *metrics.Publisher, rates pricing.Rates, refreshInterval time.Duration) *Service {
	return &Service{
		ctx:             ctx,
		backend:         client,
		publisher:       publisher,
		rates:           rates,
		refreshInterval: refreshInterval,
		stopChan:        make(chan struct{}),
	}
}

// AllInsights computes every insight family in one pass over the aggregated
// namespace resources. The report's slices are empty, never nil, when there
// is no data.
func (s *Service) AllInsights(ctx context.Context) (*Report, error) {
	records, err := s.CollectResources(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		CostEfficiencies: make([]EfficiencyResult, 0, len(records)),
		Recommendations:  make([]Recommendation, 0),
		CostAnomalies:    make([]AnomalyResult, 0, len(records)),
		CostForecasts:    make([]ForecastResult, 0, len(records)),
	}
	for _, record := range records {
		report.CostEfficiencies = append(report.CostEfficiencies, s.ScoreEfficiency(record))
		report.Recommendations = append(report.Recommendations, s.Recommend(record)...)
		report.CostAnomalies = append(report.CostAnomalies, s.DetectAnomaly(ctx, record.Namespace))
		report.CostForecasts = append(report.CostForecasts, s.Forecast(ctx, record.Namespace))
	}
	return report, nil
}

// RefreshAll recomputes every insight so the published gauges are current
// before the first scrape. Used at startup and by the refresh loop.
func (s *Service) RefreshAll(ctx context.Context) error {
	records, err := s.CollectResources(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh insights: %w", err)
	}

	for _, record := range records {
		s.ScoreEfficiency(record)
		s.Recommend(record)
		s.DetectAnomaly(ctx, record.Namespace)
		s.Forecast(ctx, record.Namespace)
	}

	log.Printf("Metrics refreshed for %d namespaces", len(records))
	return nil
}

// Start launches the background refresh loop.
func (s *Service) Start() error {
	if s.refreshInterval <= 0 {
		return nil
	}
	log.Printf("Starting insight refresh loop with interval %s", s.refreshInterval)
	go s.refreshLoop()
	return nil
}

func (s *Service) refreshLoop() {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RefreshAll(s.ctx); err != nil {
				log.Printf("Background insight refresh failed: %v", err)
			}
		case <-s.stopChan:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

// Stop terminates the refresh loop.
func (s *Service) Stop() {
	close(s.stopChan)
}
