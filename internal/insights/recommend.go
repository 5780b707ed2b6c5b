package insights

import "math"

const (
	// Namespaces using less than this share of their request are
	// rightsizing candidates.
	utilizationCutoff = 0.7
	// Recommended requests keep a 30% headroom over observed usage.
	rightsizeBuffer = 1.3
	// Floor for recommended requests, in cores or GiB.
	minRecommendedRequest = 0.1
	// Rightsizing recommendations below this monthly saving are noise.
	minMonthlySavings = 1.0

	hoursPerMonth = 730

	cpuLimitMultiplier    = 2.0
	memoryLimitMultiplier = 1.5
)

// Recommend derives the optimization recommendations for one namespace and
// publishes a savings gauge for each. Rightsizing looks for over-requested
// CPU and memory; limit recommendations flag workloads running without any
// limit at all.
func (s *Service) Recommend(record ResourceRecord) []Recommendation {
	recommendations := []Recommendation{}

	if record.CPURequest > 0 && record.CPUUsage/record.CPURequest < utilizationCutoff {
		recommended := math.Max(minRecommendedRequest, record.CPUUsage*rightsizeBuffer)
		savings := (record.CPURequest - recommended) * s.rates.CPUCoreHourly * hoursPerMonth
		if savings > minMonthlySavings {
			recommendations = append(recommendations, Recommendation{
				Namespace:        record.Namespace,
				Type:             CPURequestRightsizing,
				Description:      "Reduce CPU requests to match actual usage plus a 30% buffer",
				EstimatedSavings: savings,
				CurrentValue:     Numeric(record.CPURequest),
				RecommendedValue: Numeric(recommended),
			})
		}
	}

	if record.MemoryRequest > 0 && record.MemoryUsage/record.MemoryRequest < utilizationCutoff {
		recommended := math.Max(minRecommendedRequest, record.MemoryUsage*rightsizeBuffer)
		savings := (record.MemoryRequest - recommended) * s.rates.MemoryGiBHourly * hoursPerMonth
		if savings > minMonthlySavings {
			recommendations = append(recommendations, Recommendation{
				Namespace:        record.Namespace,
				Type:             MemoryRequestRightsizing,
				Description:      "Reduce memory requests to match actual usage plus a 30% buffer",
				EstimatedSavings: savings,
				CurrentValue:     Numeric(record.MemoryRequest),
				RecommendedValue: Numeric(recommended),
			})
		}
	}

	if record.CPULimit == 0 && record.CPURequest > 0 {
		recommendations = append(recommendations, Recommendation{
			Namespace:        record.Namespace,
			Type:             AddCPULimits,
			Description:      "Add CPU limits to prevent resource hogging",
			EstimatedSavings: 0.0,
			CurrentValue:     Advisory("No limit"),
			RecommendedValue: Numeric(math.Max(1, record.CPURequest*cpuLimitMultiplier)),
		})
	}

	if record.MemoryLimit == 0 && record.MemoryRequest > 0 {
		recommendations = append(recommendations, Recommendation{
			Namespace:        record.Namespace,
			Type:             AddMemoryLimits,
			Description:      "Add memory limits to prevent resource hogging",
			EstimatedSavings: 0.0,
			CurrentValue:     Advisory("No limit"),
			RecommendedValue: Numeric(math.Max(1, record.MemoryRequest*memoryLimitMultiplier)),
		})
	}

	for _, recommendation := range recommendations {
		s.publisher.SetOptimizationSavings(recommendation.Namespace, string(recommendation.Type), recommendation.EstimatedSavings)
	}

	return recommendations
}
