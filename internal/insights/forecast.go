package insights

import (
	"context"
	"log"
	"time"
)

const (
	forecastWindow = 30 * 24 * time.Hour
	forecastStep   = 24 * time.Hour
	// A trend fitted to a week or less of daily points is not worth
	// projecting.
	minForecastPoints = 7

	forecastHorizonDays = 30
)

// Forecast projects the namespace's monthly cost thirty days out by fitting
// a linear trend to its daily cost history. Too little history, or history
// that cannot be fetched, degrades to a flat forecast at the current cost.
func (s *Service) Forecast(ctx context.Context, namespace string) ForecastResult {
	current := s.currentCost(ctx, scopedCostQuery(namespace, scaleMonthly))

	series, err := s.costSeries(ctx, scopedCostQuery(namespace, scaleDaily), forecastWindow, forecastStep)
	if err != nil {
		log.Printf("Error collecting cost history for namespace %s: %v", namespace, err)
		series = nil
	}

	result := ForecastResult{
		Namespace:             namespace,
		CurrentMonthlyCost:    current,
		ForecastedMonthlyCost: current,
	}

	if len(series) > minForecastPoints {
		xs := make([]float64, len(series))
		for i := range xs {
			xs[i] = float64(i)
		}
		slope, _ := linearRegression(xs, series)

		if current > 0 {
			result.TrendPercent = slope * forecastHorizonDays / current * 100
		}
		result.ForecastedMonthlyCost = current * (1 + result.TrendPercent/100)
	}

	s.publisher.SetCostForecast(namespace, result.ForecastedMonthlyCost)
	return result
}
