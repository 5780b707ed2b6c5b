package insights

import (
	"math"
	"testing"

	"github.com/kubefinops/insights/internal/backend"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestRecommendOverProvisionedNamespace(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	record := ResourceRecord{
		Namespace:     "web",
		CPURequest:    1.0,
		CPUUsage:      0.5,
		MemoryRequest: 2.0,
		MemoryUsage:   1.0,
	}
	recommendations := svc.Recommend(record)

	if len(recommendations) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(recommendations))
	}

	cpu := recommendations[0]
	if cpu.Type != CPURequestRightsizing {
		t.Errorf("expected cpu rightsizing first, got %s", cpu.Type)
	}
	if cpu.Description != "Reduce CPU requests to match actual usage plus a 30% buffer" {
		t.Errorf("unexpected cpu description: %s", cpu.Description)
	}
	if !approx(cpu.RecommendedValue.Float(), 0.65) {
		t.Errorf("cpu recommended value = %v, want 0.65", cpu.RecommendedValue.Float())
	}
	if !approx(cpu.EstimatedSavings, 10.22) {
		t.Errorf("cpu savings = %v, want 10.22", cpu.EstimatedSavings)
	}
	if cpu.CurrentValue.Float() != 1.0 {
		t.Errorf("cpu current value = %v, want 1.0", cpu.CurrentValue.Float())
	}

	memory := recommendations[1]
	if memory.Type != MemoryRequestRightsizing {
		t.Errorf("expected memory rightsizing second, got %s", memory.Type)
	}
	if !approx(memory.RecommendedValue.Float(), 1.3) {
		t.Errorf("memory recommended value = %v, want 1.3", memory.RecommendedValue.Float())
	}
	if !approx(memory.EstimatedSavings, 5.11) {
		t.Errorf("memory savings = %v, want 5.11", memory.EstimatedSavings)
	}

	cpuLimit := recommendations[2]
	if cpuLimit.Type != AddCPULimits {
		t.Errorf("expected cpu limit recommendation third, got %s", cpuLimit.Type)
	}
	if cpuLimit.EstimatedSavings != 0 {
		t.Errorf("limit recommendations carry no savings, got %v", cpuLimit.EstimatedSavings)
	}
	if cpuLimit.CurrentValue.IsNumeric() || cpuLimit.CurrentValue.Text() != "No limit" {
		t.Errorf("expected advisory current value, got %+v", cpuLimit.CurrentValue)
	}
	if cpuLimit.RecommendedValue.Float() != 2 {
		t.Errorf("cpu limit recommended value = %v, want 2", cpuLimit.RecommendedValue.Float())
	}

	memoryLimit := recommendations[3]
	if memoryLimit.Type != AddMemoryLimits {
		t.Errorf("expected memory limit recommendation fourth, got %s", memoryLimit.Type)
	}
	if memoryLimit.RecommendedValue.Float() != 3 {
		t.Errorf("memory limit recommended value = %v, want 3", memoryLimit.RecommendedValue.Float())
	}
}

func TestRecommendUtilizationCutoff(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	// Exactly at the cutoff is considered well utilized.
	record := ResourceRecord{
		Namespace:   "steady",
		CPURequest:  1.0,
		CPUUsage:    0.7,
		CPULimit:    2.0,
		MemoryLimit: 4.0,
	}
	for _, rec := range svc.Recommend(record) {
		if rec.Type == CPURequestRightsizing {
			t.Error("no rightsizing expected at exactly 70% utilization")
		}
	}
}

func TestRecommendSuppressesMarginalSavings(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	// Rightsizing 0.15 GiB down to the 0.1 floor saves well under a
	// dollar a month, so no rightsizing is emitted.
	record := ResourceRecord{
		Namespace:     "tiny",
		MemoryRequest: 0.15,
		MemoryUsage:   0.05,
		CPULimit:      1.0,
		MemoryLimit:   1.0,
	}
	for _, rec := range svc.Recommend(record) {
		if rec.Type == MemoryRequestRightsizing {
			t.Errorf("marginal savings should be suppressed, got %+v", rec)
		}
	}
}

func TestRecommendRequestFloor(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	record := ResourceRecord{
		Namespace:   "floor",
		CPURequest:  4.0,
		CPUUsage:    0.01,
		CPULimit:    8.0,
		MemoryLimit: 8.0,
	}
	recommendations := svc.Recommend(record)

	if len(recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recommendations))
	}
	if got := recommendations[0].RecommendedValue.Float(); got != 0.1 {
		t.Errorf("recommended request should floor at 0.1, got %v", got)
	}
}

func TestRecommendLimitFloor(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	// Small requests still get at least a whole core or GiB as the limit.
	record := ResourceRecord{
		Namespace:     "small",
		CPURequest:    0.25,
		CPUUsage:      0.2,
		MemoryRequest: 0.5,
		MemoryUsage:   0.4,
	}
	recommendations := svc.Recommend(record)

	if len(recommendations) != 2 {
		t.Fatalf("expected 2 limit recommendations, got %d", len(recommendations))
	}
	for _, rec := range recommendations {
		if rec.RecommendedValue.Float() != 1 {
			t.Errorf("%s recommended value = %v, want 1", rec.Type, rec.RecommendedValue.Float())
		}
	}
}

func TestRecommendNothingForEmptyNamespace(t *testing.T) {
	svc, _ := newTestService(backend.FallbackClient{})

	if recommendations := svc.Recommend(ResourceRecord{Namespace: "empty"}); len(recommendations) != 0 {
		t.Errorf("expected no recommendations, got %d", len(recommendations))
	}
}

func TestRecommendPublishesSavingsForAllTypes(t *testing.T) {
	svc, reg := newTestService(backend.FallbackClient{})

	record := ResourceRecord{
		Namespace:     "web",
		CPURequest:    1.0,
		CPUUsage:      0.5,
		MemoryRequest: 2.0,
		MemoryUsage:   1.0,
	}
	recommendations := svc.Recommend(record)

	for _, rec := range recommendations {
		got := gaugeValue(t, reg, "finops_optimization_savings", map[string]string{
			"exported_namespace":  "web",
			"recommendation_type": string(rec.Type),
		})
		if !approx(got, rec.EstimatedSavings) {
			t.Errorf("savings gauge for %s = %v, want %v", rec.Type, got, rec.EstimatedSavings)
		}
	}
}
