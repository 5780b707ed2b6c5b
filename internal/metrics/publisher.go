package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Publisher owns the process-wide FinOps instruments. Every analyzer writes
// through it as a side effect of computing a result; values are overwritten
// per label set on each recomputation, so concurrent writers are safe.
type Publisher struct {
	requestsTotal       *prometheus.CounterVec
	efficiencyScore     *prometheus.GaugeVec
	resourceWaste       *prometheus.GaugeVec
	resourceUtilization *prometheus.GaugeVec
	anomalyScore        *prometheus.GaugeVec
	optimizationSavings *prometheus.GaugeVec
	costForecast        *prometheus.GaugeVec
}

// NewPublisher creates the FinOps instruments and registers them with the
// given registerer. Tests pass a fresh registry.
func NewPublisher(reg prometheus.Registerer) *Publisher {
	p := &Publisher{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finops_http_requests_total",
			Help: "Total number of HTTP requests to FinOps API",
		}, []string{"method", "endpoint", "status"}),
		efficiencyScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_efficiency_score",
			Help: "Cost efficiency score for namespaces (0-100, higher is better)",
		}, []string{"exported_namespace"}),
		resourceWaste: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_resource_waste",
			Help: "Percentage of wasted resources (0-100, lower is better)",
		}, []string{"exported_namespace", "resource_type"}),
		resourceUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_resource_utilization",
			Help: "Ratio of actual usage vs requested resources (ideal ~0.7-0.8)",
		}, []string{"exported_namespace", "resource_type"}),
		anomalyScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_anomaly_score",
			Help: "Score indicating unusual cost patterns (0-100, higher means more anomalous)",
		}, []string{"exported_namespace"}),
		optimizationSavings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_optimization_savings",
			Help: "Estimated monthly savings from optimization ($)",
		}, []string{"exported_namespace", "recommendation_type"}),
		costForecast: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "finops_cost_forecast",
			Help: "30-day cost forecast ($)",
		}, []string{"exported_namespace"}),
	}

	reg.MustRegister(
		p.requestsTotal,
		p.efficiencyScore,
		p.resourceWaste,
		p.resourceUtilization,
		p.anomalyScore,
		p.optimizationSavings,
		p.costForecast,
	)

	return p
}

// RecordRequest counts one handled HTTP request.
func (p *Publisher) RecordRequest(method, endpoint string, status int) {
	p.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// SetEfficiencyScore publishes the 0-100 efficiency score for a namespace.
func (p *Publisher) SetEfficiencyScore(namespace string, score float64) {
	p.efficiencyScore.WithLabelValues(namespace).Set(score)
}

// SetResourceWaste publishes the wasted-percentage for one resource type.
func (p *Publisher) SetResourceWaste(namespace, resourceType string, percent float64) {
	p.resourceWaste.WithLabelValues(namespace, resourceType).Set(percent)
}

// SetResourceUtilization publishes the usage/request ratio for one resource type.
func (p *Publisher) SetResourceUtilization(namespace, resourceType string, ratio float64) {
	p.resourceUtilization.WithLabelValues(namespace, resourceType).Set(ratio)
}

// SetAnomalyScore publishes the 0-100 cost anomaly score for a namespace.
func (p *Publisher) SetAnomalyScore(namespace string, score float64) {
	p.anomalyScore.WithLabelValues(namespace).Set(score)
}

// SetOptimizationSavings publishes the estimated monthly savings for one
// recommendation type in a namespace.
func (p *Publisher) SetOptimizationSavings(namespace, recommendationType string, savings float64) {
	p.optimizationSavings.WithLabelValues(namespace, recommendationType).Set(savings)
}

// SetCostForecast publishes the 30-day forecasted monthly cost for a namespace.
func (p *Publisher) SetCostForecast(namespace string, forecast float64) {
	p.costForecast.WithLabelValues(namespace).Set(forecast)
}
