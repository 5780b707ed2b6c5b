package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/common/model"
)

func anomalyBackend(namespace string, current float64, history []float64) *fakeBackend {
	query := scopedCostQuery(namespace, scaleHourly)
	return &fakeBackend{
		vectors:  map[string]model.Vector{query: {sampleFor(namespace, current)}},
		matrices: map[string]model.Matrix{query: seriesOf(history...)},
	}
}

func TestDetectAnomalySteadyCost(t *testing.T) {
	fb := anomalyBackend("web", 10, repeatValue(10, 25))
	svc, _ := newTestService(fb)

	result := svc.DetectAnomaly(context.Background(), "web")

	if result.AnomalyScore != 0 {
		t.Errorf("score = %v, want 0", result.AnomalyScore)
	}
	if result.UsualCost != 10 || result.CurrentCost != 10 {
		t.Errorf("expected usual and current cost 10, got %v and %v", result.UsualCost, result.CurrentCost)
	}
	if result.IncreasePercent != 0 {
		t.Errorf("increase = %v, want 0", result.IncreasePercent)
	}
}

func TestDetectAnomalySpikeOnFlatHistory(t *testing.T) {
	// Zero deviation turns any change into a maximal anomaly.
	fb := anomalyBackend("web", 50, repeatValue(10, 25))
	svc, reg := newTestService(fb)

	result := svc.DetectAnomaly(context.Background(), "web")

	if result.AnomalyScore != 100 {
		t.Errorf("score = %v, want 100", result.AnomalyScore)
	}
	if result.UsualCost != 10 {
		t.Errorf("usual cost = %v, want 10", result.UsualCost)
	}
	if result.IncreasePercent != 400 {
		t.Errorf("increase = %v, want 400", result.IncreasePercent)
	}
	if got := gaugeValue(t, reg, "finops_anomaly_score", map[string]string{"exported_namespace": "web"}); got != 100 {
		t.Errorf("anomaly gauge = %v, want 100", got)
	}
}

func TestDetectAnomalyZScoreScaling(t *testing.T) {
	// 26 points alternating 8 and 12: mean 10, deviation 2.
	history := make([]float64, 26)
	for i := range history {
		if i%2 == 0 {
			history[i] = 8
		} else {
			history[i] = 12
		}
	}

	tests := []struct {
		name      string
		current   float64
		wantScore float64
	}{
		{"within one deviation", 10, 0},
		{"two deviations", 14, 50},
		{"three deviations", 16, 100},
		{"far beyond", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(anomalyBackend("web", tt.current, history))
			result := svc.DetectAnomaly(context.Background(), "web")
			if !approx(result.AnomalyScore, tt.wantScore) {
				t.Errorf("score = %v, want %v", result.AnomalyScore, tt.wantScore)
			}
		})
	}
}

func TestDetectAnomalyInsufficientHistory(t *testing.T) {
	// 24 hourly points are not enough for a baseline.
	fb := anomalyBackend("web", 42, repeatValue(10, 24))
	svc, _ := newTestService(fb)

	result := svc.DetectAnomaly(context.Background(), "web")

	if result.AnomalyScore != 0 {
		t.Errorf("score = %v, want 0", result.AnomalyScore)
	}
	if result.UsualCost != 42 {
		t.Errorf("usual cost should fall back to current, got %v", result.UsualCost)
	}
	if result.IncreasePercent != 0 {
		t.Errorf("increase = %v, want 0", result.IncreasePercent)
	}
}

func TestDetectAnomalyNoData(t *testing.T) {
	svc, _ := newTestService(&fakeBackend{})

	result := svc.DetectAnomaly(context.Background(), "ghost")

	if result.Namespace != "ghost" {
		t.Errorf("namespace = %s, want ghost", result.Namespace)
	}
	if result.AnomalyScore != 0 || result.CurrentCost != 0 || result.UsualCost != 0 {
		t.Errorf("expected zeroed result, got %+v", result)
	}
}

func TestDetectAnomalyBackendFailure(t *testing.T) {
	fb := &fakeBackend{err: errors.New("connection refused")}
	svc, reg := newTestService(fb)

	result := svc.DetectAnomaly(context.Background(), "web")

	if result.AnomalyScore != 0 {
		t.Errorf("backend failure must degrade to score 0, got %v", result.AnomalyScore)
	}
	if got := gaugeValue(t, reg, "finops_anomaly_score", map[string]string{"exported_namespace": "web"}); got != 0 {
		t.Errorf("anomaly gauge = %v, want 0", got)
	}
}
