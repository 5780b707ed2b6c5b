package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/common/model"
)

func forecastBackend(namespace string, currentMonthly float64, dailyHistory []float64) *fakeBackend {
	return &fakeBackend{
		vectors: map[string]model.Vector{
			scopedCostQuery(namespace, scaleMonthly): {sampleFor(namespace, currentMonthly)},
		},
		matrices: map[string]model.Matrix{
			scopedCostQuery(namespace, scaleDaily): seriesOf(dailyHistory...),
		},
	}
}

func TestForecastRisingTrend(t *testing.T) {
	// Ten days climbing one dollar a day: slope 1, so a 30-day horizon
	// adds 30% on a $100 monthly cost.
	fb := forecastBackend("web", 100, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	svc, reg := newTestService(fb)

	result := svc.Forecast(context.Background(), "web")

	if !approx(result.TrendPercent, 30) {
		t.Errorf("trend = %v, want 30", result.TrendPercent)
	}
	if !approx(result.ForecastedMonthlyCost, 130) {
		t.Errorf("forecast = %v, want 130", result.ForecastedMonthlyCost)
	}
	if result.CurrentMonthlyCost != 100 {
		t.Errorf("current = %v, want 100", result.CurrentMonthlyCost)
	}
	if got := gaugeValue(t, reg, "finops_cost_forecast", map[string]string{"exported_namespace": "web"}); !approx(got, 130) {
		t.Errorf("forecast gauge = %v, want 130", got)
	}
}

func TestForecastFlatHistory(t *testing.T) {
	fb := forecastBackend("web", 75, repeatValue(2.5, 10))
	svc, _ := newTestService(fb)

	result := svc.Forecast(context.Background(), "web")

	if result.TrendPercent != 0 {
		t.Errorf("trend = %v, want 0", result.TrendPercent)
	}
	if result.ForecastedMonthlyCost != 75 {
		t.Errorf("forecast = %v, want 75", result.ForecastedMonthlyCost)
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	// Seven daily points are not enough to fit a trend.
	fb := forecastBackend("web", 100, []float64{1, 2, 3, 4, 5, 6, 7})
	svc, _ := newTestService(fb)

	result := svc.Forecast(context.Background(), "web")

	if result.TrendPercent != 0 {
		t.Errorf("trend = %v, want 0", result.TrendPercent)
	}
	if result.ForecastedMonthlyCost != 100 {
		t.Errorf("forecast should stay at current cost, got %v", result.ForecastedMonthlyCost)
	}
}

func TestForecastZeroCurrentCost(t *testing.T) {
	fb := forecastBackend("web", 0, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	svc, _ := newTestService(fb)

	result := svc.Forecast(context.Background(), "web")

	if result.TrendPercent != 0 {
		t.Errorf("trend = %v, want 0 when current cost is zero", result.TrendPercent)
	}
	if result.ForecastedMonthlyCost != 0 {
		t.Errorf("forecast = %v, want 0", result.ForecastedMonthlyCost)
	}
}

func TestForecastNoData(t *testing.T) {
	svc, _ := newTestService(&fakeBackend{})

	result := svc.Forecast(context.Background(), "ghost")

	if result.CurrentMonthlyCost != 0 || result.ForecastedMonthlyCost != 0 || result.TrendPercent != 0 {
		t.Errorf("expected zeroed result, got %+v", result)
	}
}

func TestForecastBackendFailure(t *testing.T) {
	fb := &fakeBackend{err: errors.New("connection refused")}
	svc, _ := newTestService(fb)

	result := svc.Forecast(context.Background(), "web")

	if result.TrendPercent != 0 || result.ForecastedMonthlyCost != 0 {
		t.Errorf("backend failure must degrade to a flat zero forecast, got %+v", result)
	}
}
