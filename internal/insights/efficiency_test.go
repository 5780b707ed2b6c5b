package insights

import (
	"testing"

	"github.com/kubefinops/insights/internal/backend"
)

func TestScoreEfficiency(t *testing.T) {
	tests := []struct {
		name       string
		record     ResourceRecord
		wantScore  float64
		wantCPU    float64
		wantMemory float64
	}{
		{
			name:       "half used",
			record:     ResourceRecord{Namespace: "web", CPURequest: 1.0, CPUUsage: 0.5, MemoryRequest: 2.0, MemoryUsage: 1.0},
			wantScore:  50,
			wantCPU:    50,
			wantMemory: 50,
		},
		{
			name:      "no requests",
			record:    ResourceRecord{Namespace: "empty"},
			wantScore: 100,
		},
		{
			name:      "usage above request",
			record:    ResourceRecord{Namespace: "busy", CPURequest: 1.0, CPUUsage: 2.0, MemoryRequest: 1.0, MemoryUsage: 1.5},
			wantScore: 100,
		},
		{
			name:       "fully idle",
			record:     ResourceRecord{Namespace: "idle", CPURequest: 4.0, MemoryRequest: 8.0},
			wantScore:  0,
			wantCPU:    100,
			wantMemory: 100,
		},
		{
			name:       "cpu only",
			record:     ResourceRecord{Namespace: "cpu", CPURequest: 2.0, CPUUsage: 0.5},
			wantScore:  62.5,
			wantCPU:    75,
			wantMemory: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(backend.FallbackClient{})
			result := svc.ScoreEfficiency(tt.record)

			if result.Namespace != tt.record.Namespace {
				t.Errorf("namespace = %s, want %s", result.Namespace, tt.record.Namespace)
			}
			if result.EfficiencyScore != tt.wantScore {
				t.Errorf("score = %v, want %v", result.EfficiencyScore, tt.wantScore)
			}
			if result.WastedCPUPercent != tt.wantCPU {
				t.Errorf("wasted cpu = %v, want %v", result.WastedCPUPercent, tt.wantCPU)
			}
			if result.WastedMemoryPercent != tt.wantMemory {
				t.Errorf("wasted memory = %v, want %v", result.WastedMemoryPercent, tt.wantMemory)
			}
		})
	}
}

func TestScoreEfficiencyPublishesGauges(t *testing.T) {
	svc, reg := newTestService(backend.FallbackClient{})

	svc.ScoreEfficiency(ResourceRecord{Namespace: "web", CPURequest: 1.0, CPUUsage: 0.5, MemoryRequest: 2.0, MemoryUsage: 1.0})

	if got := gaugeValue(t, reg, "finops_efficiency_score", map[string]string{"exported_namespace": "web"}); got != 50 {
		t.Errorf("efficiency gauge = %v, want 50", got)
	}
	if got := gaugeValue(t, reg, "finops_resource_waste", map[string]string{"exported_namespace": "web", "resource_type": "memory"}); got != 50 {
		t.Errorf("memory waste gauge = %v, want 50", got)
	}
	if got := gaugeValue(t, reg, "finops_resource_utilization", map[string]string{"exported_namespace": "web", "resource_type": "cpu"}); got != 0.5 {
		t.Errorf("cpu utilization gauge = %v, want 0.5", got)
	}
}
