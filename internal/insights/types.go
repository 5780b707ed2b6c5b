package insights

import (
	"encoding/json"
	"fmt"
)

// ResourceRecord aggregates one namespace's requests, usage, limits and
// monthly cost. CPU values are in cores, memory values in GiB, cost in
// dollars per month. Fields missing from the backend stay zero.
type ResourceRecord struct {
	Namespace     string  `json:"namespace"`
	CPUUsage      float64 `json:"cpu_usage"`
	CPURequest    float64 `json:"cpu_request"`
	CPULimit      float64 `json:"cpu_limit"`
	MemoryUsage   float64 `json:"memory_usage"`
	MemoryRequest float64 `json:"memory_request"`
	MemoryLimit   float64 `json:"memory_limit"`
	Cost          float64 `json:"cost"`
}

// EfficiencyResult scores how well a namespace uses what it requests.
type EfficiencyResult struct {
	Namespace           string  `json:"namespace"`
	EfficiencyScore     float64 `json:"efficiency_score"`
	WastedCPUPercent    float64 `json:"wasted_cpu_percent"`
	WastedMemoryPercent float64 `json:"wasted_memory_percent"`
}

// RecommendationType identifies the optimization a recommendation proposes.
type RecommendationType string

const (
	CPURequestRightsizing    RecommendationType = "cpu_request_rightsizing"
	MemoryRequestRightsizing RecommendationType = "memory_request_rightsizing"
	AddCPULimits             RecommendationType = "add_cpu_limits"
	AddMemoryLimits          RecommendationType = "add_memory_limits"
)

// Recommendation is a single actionable optimization for a namespace.
// Current and recommended values are either quantities or advisory text
// such as "No limit", so they carry the Value variant type.
type Recommendation struct {
	Namespace        string             `json:"namespace"`
	Type             RecommendationType `json:"recommendation_type"`
	Description      string             `json:"description"`
	EstimatedSavings float64            `json:"estimated_savings"`
	CurrentValue     Value              `json:"current_value"`
	RecommendedValue Value              `json:"recommended_value"`
}

// AnomalyResult compares a namespace's current hourly cost against its
// trailing seven-day baseline.
type AnomalyResult struct {
	Namespace       string  `json:"namespace"`
	UsualCost       float64 `json:"usual_cost"`
	CurrentCost     float64 `json:"current_cost"`
	IncreasePercent float64 `json:"increase_percent"`
	AnomalyScore    float64 `json:"anomaly_score"`
}

// ForecastResult projects a namespace's monthly cost thirty days out.
type ForecastResult struct {
	Namespace             string  `json:"namespace"`
	CurrentMonthlyCost    float64 `json:"current_monthly_cost"`
	ForecastedMonthlyCost float64 `json:"forecasted_monthly_cost"`
	TrendPercent          float64 `json:"trend_percent"`
}

// Report bundles every insight family in one response.
type Report struct {
	CostEfficiencies []EfficiencyResult `json:"cost_efficiencies"`
	Recommendations  []Recommendation   `json:"recommendations"`
	CostAnomalies    []AnomalyResult    `json:"cost_anomalies"`
	CostForecasts    []ForecastResult   `json:"cost_forecasts"`
}

// Value holds either a numeric quantity or an advisory string. It marshals
// to a JSON number or string accordingly, so clients see `0.65` next to
// `"No limit"` in the same field position.
type Value struct {
	number  float64
	text    string
	numeric bool
}

// Numeric wraps a quantity.
func Numeric(v float64) Value {
	return Value{number: v, numeric: true}
}

// Advisory wraps free-form text.
func Advisory(s string) Value {
	return Value{text: s}
}

// IsNumeric reports whether the value carries a quantity.
func (v Value) IsNumeric() bool {
	return v.numeric
}

// Float returns the quantity, or zero for advisory values.
func (v Value) Float() float64 {
	return v.number
}

// Text returns the advisory text, or empty for numeric values.
func (v Value) Text() string {
	return v.text
}

func (v Value) String() string {
	if v.numeric {
		return fmt.Sprintf("%g", v.number)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		v.numeric = false
		v.number = 0
		return json.Unmarshal(data, &v.text)
	}
	v.numeric = true
	v.text = ""
	return json.Unmarshal(data, &v.number)
}
