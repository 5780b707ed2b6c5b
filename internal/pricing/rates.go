package pricing

import "time"

// Built-in rates, used when neither the configuration nor a cloud provider
// supplies one.
const (
	DefaultCPUCoreHourly   = 0.04
	DefaultMemoryGiBHourly = 0.01
)

// Rate model sources.
const (
	SourceConfig  = "config"
	SourceDefault = "default"
)

// Rates are the unit prices every insight computation runs on.
type Rates struct {
	CPUCoreHourly   float64 `json:"cpu_core_hourly_cost"`
	MemoryGiBHourly float64 `json:"memory_gib_hourly_cost"`
}

// NodeShape describes the instance type a provider derived its rates from.
type NodeShape struct {
	InstanceType string  `json:"instance_type"`
	VCPUs        float64 `json:"vcpus"`
	MemoryGiB    float64 `json:"memory_gib"`
}

// Model is the fully resolved rate model served on the pricing endpoint.
// Source names where the rates came from: a provider name, "config" or
// "default".
type Model struct {
	Rates
	Provider        string     `json:"provider,omitempty"`
	Region          string     `json:"region,omitempty"`
	Source          string     `json:"source"`
	Node            *NodeShape `json:"node,omitempty"`
	SpendLast30Days *float64   `json:"spend_last_30_days,omitempty"`
	ResolvedAt      time.Time  `json:"resolved_at"`
}

// splitInstanceRate divides an instance's hourly price into per-core and
// per-GiB rates, scaling the default ratio so the parts still sum to the
// instance price. Degenerate shapes or prices keep the defaults.
func splitInstanceRate(hourlyPrice, vcpus, memoryGiB float64) (cpuRate, memoryRate float64) {
	baseline := vcpus*DefaultCPUCoreHourly + memoryGiB*DefaultMemoryGiBHourly
	if hourlyPrice <= 0 || baseline <= 0 {
		return DefaultCPUCoreHourly, DefaultMemoryGiBHourly
	}
	scale := hourlyPrice / baseline
	return DefaultCPUCoreHourly * scale, DefaultMemoryGiBHourly * scale
}
