package insights

import "fmt"

// Namespace-level aggregation queries. Dashboards built against the metric
// names below predate this service, so the expressions stay stable.
const (
	cpuRequestsQuery = `sum(kube_pod_container_resource_requests{resource='cpu'}) by (namespace)`
	cpuUsageQuery    = `sum(rate(container_cpu_usage_seconds_total[1h])) by (namespace)`
	cpuLimitsQuery   = `sum(kube_pod_container_resource_limits{resource='cpu'}) by (namespace)`

	memoryRequestsQuery = `sum(kube_pod_container_resource_requests{resource='memory'}) by (namespace) / 1024 / 1024 / 1024`
	memoryUsageQuery    = `sum(container_memory_working_set_bytes) by (namespace) / 1024 / 1024 / 1024`
	memoryLimitsQuery   = `sum(kube_pod_container_resource_limits{resource='memory'}) by (namespace) / 1024 / 1024 / 1024`

	// Monthly cost per namespace, combining the allocation series with the
	// cluster-average node rates.
	namespaceCostQuery = `sum((sum(container_memory_allocation_bytes) by (namespace) * on() group_left() (avg(node_ram_hourly_cost) / (1024 * 1024 * 1024) * 730)) + (sum(container_cpu_allocation) by (namespace) * on() group_left() (avg(node_cpu_hourly_cost) * 730))) by (namespace)`
)

// Scale factors applied to the hourly node rates when a single-namespace
// cost is computed: hourly for anomaly detection, daily for the forecast
// history, monthly for the forecast anchor.
const (
	scaleHourly  = 1
	scaleDaily   = 24
	scaleMonthly = 730
)

// scopedCostQuery builds the cost expression for one namespace with the
// hourly node rates scaled by the given factor.
func scopedCostQuery(namespace string, hourlyScale int) string {
	return fmt.Sprintf(`sum((sum(container_memory_allocation_bytes{namespace=%q}) * on() group_left() (avg(node_ram_hourly_cost) / (1024 * 1024 * 1024) * %d)) + (sum(container_cpu_allocation{namespace=%q}) * on() group_left() (avg(node_cpu_hourly_cost) * %d)))`, namespace, hourlyScale, namespace, hourlyScale)
}
