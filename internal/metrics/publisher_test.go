package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherRegistersAllInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPublisher(reg)

	// Touch every instrument once so Gather reports all families.
	p.RecordRequest("GET", "/health", 200)
	p.SetEfficiencyScore("default", 75)
	p.SetResourceWaste("default", "cpu", 25)
	p.SetResourceUtilization("default", "cpu", 0.75)
	p.SetAnomalyScore("default", 0)
	p.SetOptimizationSavings("default", "cpu_request_rightsizing", 10)
	p.SetCostForecast("default", 120)

	families, err := reg.Gather()
	require.NoError(t, err)

	got := make([]string, 0, len(families))
	for _, mf := range families {
		got = append(got, mf.GetName())
	}
	sort.Strings(got)

	assert.Equal(t, []string{
		"finops_anomaly_score",
		"finops_cost_forecast",
		"finops_efficiency_score",
		"finops_http_requests_total",
		"finops_optimization_savings",
		"finops_resource_utilization",
		"finops_resource_waste",
	}, got)
}

func TestRecordRequestIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPublisher(reg)

	p.RecordRequest("GET", "/cost-efficiency", 200)
	p.RecordRequest("GET", "/cost-efficiency", 200)
	p.RecordRequest("GET", "/cost-efficiency", 500)

	assert.Equal(t, float64(2), testutil.ToFloat64(p.requestsTotal.WithLabelValues("GET", "/cost-efficiency", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.requestsTotal.WithLabelValues("GET", "/cost-efficiency", "500")))
}

func TestGaugeSettersOverwrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPublisher(reg)

	p.SetEfficiencyScore("prod", 40)
	p.SetEfficiencyScore("prod", 85)
	assert.Equal(t, float64(85), testutil.ToFloat64(p.efficiencyScore.WithLabelValues("prod")))

	p.SetResourceWaste("prod", "memory", 12.5)
	assert.Equal(t, 12.5, testutil.ToFloat64(p.resourceWaste.WithLabelValues("prod", "memory")))

	p.SetResourceUtilization("prod", "memory", 0.875)
	assert.Equal(t, 0.875, testutil.ToFloat64(p.resourceUtilization.WithLabelValues("prod", "memory")))

	p.SetAnomalyScore("prod", 100)
	assert.Equal(t, float64(100), testutil.ToFloat64(p.anomalyScore.WithLabelValues("prod")))

	p.SetOptimizationSavings("prod", "add_cpu_limits", 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(p.optimizationSavings.WithLabelValues("prod", "add_cpu_limits")))

	p.SetCostForecast("prod", 310.5)
	assert.Equal(t, 310.5, testutil.ToFloat64(p.costForecast.WithLabelValues("prod")))
}

func TestPusherPushesToGateway(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	p := NewPublisher(reg)
	p.SetEfficiencyScore("default", 50)

	pusher := NewPusher(server.URL, time.Minute, reg)
	require.NoError(t, pusher.Push(context.Background()))

	select {
	case req := <-received:
		assert.Equal(t, "PUT /metrics/job/finops_api", req)
	case <-time.After(2 * time.Second):
		t.Fatal("Pushgateway never received a request")
	}
}

func TestPusherStartNoopWithoutInterval(t *testing.T) {
	reg := prometheus.NewRegistry()
	pusher := NewPusher("http://localhost:9091", 0, reg)

	// Must not spawn a loop or panic on stop.
	pusher.Start(context.Background())
	pusher.Stop()
}
