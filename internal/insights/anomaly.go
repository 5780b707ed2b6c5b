package insights

import (
	"context"
	"log"
	"math"
	"time"
)

const (
	anomalyWindow = 7 * 24 * time.Hour
	anomalyStep   = time.Hour
	// A baseline needs more than a day of hourly points before z-scores
	// mean anything.
	minAnomalyPoints = 24
)

// DetectAnomaly compares the namespace's current hourly cost against its
// trailing week. With too little history, or when the history cannot be
// fetched, the result degrades to a zero score with the current cost as its
// own baseline rather than failing the request.
func (s *Service) DetectAnomaly(ctx context.Context, namespace string) AnomalyResult {
	current := s.currentCost(ctx, scopedCostQuery(namespace, scaleHourly))

	series, err := s.costSeries(ctx, scopedCostQuery(namespace, scaleHourly), anomalyWindow, anomalyStep)
	if err != nil {
		log.Printf("Error collecting cost history for namespace %s: %v", namespace, err)
		series = nil
	}

	result := AnomalyResult{
		Namespace:   namespace,
		UsualCost:   current,
		CurrentCost: current,
	}

	if len(series) > minAnomalyPoints {
		usual := mean(series)
		deviation := stdDev(series)
		result.UsualCost = usual

		if deviation > 0 {
			z := math.Abs(current-usual) / deviation
			result.AnomalyScore = clamp((z-1)*50, 0, 100)
		} else if current != usual {
			// Perfectly flat history makes any change anomalous.
			result.AnomalyScore = 100
		}

		if usual > 0 {
			result.IncreasePercent = (current - usual) / usual * 100
		}
	}

	s.publisher.SetAnomalyScore(namespace, result.AnomalyScore)
	return result
}
