package insights

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
)

// CollectResources runs the namespace aggregation queries and merges their
// results into one record per namespace. A namespace appearing in any query
// gets a record; fields its queries did not return stay zero. A failing
// query aborts the whole collection, since every insight downstream reads
// from these records.
func (s *Service) CollectResources(ctx context.Context) ([]ResourceRecord, error) {
	fields := []struct {
		query  string
		assign func(*ResourceRecord, float64)
	}{
		{cpuRequestsQuery, func(r *ResourceRecord, v float64) { r.CPURequest = v }},
		{cpuUsageQuery, func(r *ResourceRecord, v float64) { r.CPUUsage = v }},
		{cpuLimitsQuery, func(r *ResourceRecord, v float64) { r.CPULimit = v }},
		{memoryRequestsQuery, func(r *ResourceRecord, v float64) { r.MemoryRequest = v }},
		{memoryUsageQuery, func(r *ResourceRecord, v float64) { r.MemoryUsage = v }},
		{memoryLimitsQuery, func(r *ResourceRecord, v float64) { r.MemoryLimit = v }},
		{namespaceCostQuery, func(r *ResourceRecord, v float64) { r.Cost = v }},
	}

	records := make(map[string]*ResourceRecord)
	for _, field := range fields {
		vector, err := s.backend.Query(ctx, field.query)
		if err != nil {
			return nil, fmt.Errorf("failed to collect namespace resources: %w", err)
		}
		for _, sample := range vector {
			name, ok := sample.Metric["namespace"]
			if !ok {
				continue
			}
			record, ok := records[string(name)]
			if !ok {
				record = &ResourceRecord{Namespace: string(name)}
				records[string(name)] = record
			}
			field.assign(record, float64(sample.Value))
		}
	}

	result := make([]ResourceRecord, 0, len(records))
	for _, record := range records {
		result = append(result, *record)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Namespace < result[j].Namespace })
	return result, nil
}

// currentCost evaluates a scoped cost query and returns the first sample,
// or zero when the namespace has no data. Query failures degrade to zero so
// per-namespace analyzers never fail a whole request.
func (s *Service) currentCost(ctx context.Context, query string) float64 {
	vector, err := s.backend.Query(ctx, query)
	if err != nil {
		log.Printf("Error querying current cost: %v", err)
		return 0
	}
	if len(vector) == 0 {
		return 0
	}
	return float64(vector[0].Value)
}

// costSeries fetches the scoped cost expression as a range series and
// returns the first stream's points in time order.
func (s *Service) costSeries(ctx context.Context, query string, window, step time.Duration) ([]float64, error) {
	end := time.Now()
	r := v1.Range{Start: end.Add(-window), End: end, Step: step}

	matrix, err := s.backend.QueryRange(ctx, query, r)
	if err != nil {
		return nil, err
	}
	if len(matrix) == 0 {
		return nil, nil
	}

	points := make([]float64, 0, len(matrix[0].Values))
	for _, pair := range matrix[0].Values {
		points = append(points, float64(pair.Value))
	}
	return points, nil
}
