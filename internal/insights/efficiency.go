package insights

import "math"

// ScoreEfficiency grades a namespace by how much of its requested CPU and
// memory goes unused, and publishes the score, waste and utilization gauges
// as a side effect.
func (s *Service) ScoreEfficiency(record ResourceRecord) EfficiencyResult {
	wastedCPU := wastedPercent(record.CPURequest, record.CPUUsage)
	wastedMemory := wastedPercent(record.MemoryRequest, record.MemoryUsage)
	score := clamp(100-(wastedCPU+wastedMemory)/2, 0, 100)

	s.publisher.SetEfficiencyScore(record.Namespace, score)
	s.publisher.SetResourceWaste(record.Namespace, "cpu", wastedCPU)
	s.publisher.SetResourceWaste(record.Namespace, "memory", wastedMemory)
	s.publisher.SetResourceUtilization(record.Namespace, "cpu", usageRatio(record.CPURequest, record.CPUUsage))
	s.publisher.SetResourceUtilization(record.Namespace, "memory", usageRatio(record.MemoryRequest, record.MemoryUsage))

	return EfficiencyResult{
		Namespace:           record.Namespace,
		EfficiencyScore:     score,
		WastedCPUPercent:    wastedCPU,
		WastedMemoryPercent: wastedMemory,
	}
}

// wastedPercent is the share of the request left unused, floored at zero so
// usage above the request never counts as negative waste. No request means
// nothing can be wasted.
func wastedPercent(request, usage float64) float64 {
	if request <= 0 {
		return 0
	}
	return math.Max(0, (request-usage)/request*100)
}

func usageRatio(request, usage float64) float64 {
	if request <= 0 {
		return 0
	}
	return usage / request
}
