package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/kubefinops/insights/internal/config"
)

// Client executes PromQL queries against the metrics backend. An instant
// query must return a vector; a range query must return a matrix. An empty
// result is not an error: it means no series matched.
type Client interface {
	Query(ctx context.Context, query string) (model.Vector, error)
	QueryRange(ctx context.Context, query string, r v1.Range) (model.Matrix, error)
	IsAvailable(ctx context.Context) bool
}

// PromClient queries a Prometheus-compatible backend over its HTTP API.
// Every call is bounded by the configured timeout.
type PromClient struct {
	api     v1.API
	timeout time.Duration
}

// NewPromClient creates a Prometheus client for the given base URL.
func NewPromClient(url string, timeout time.Duration) (*PromClient, error) {
	client, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PromClient{
		api:     v1.NewAPI(client),
		timeout: timeout,
	}, nil
}

// Query executes an instant query and returns the resulting vector.
func (c *PromClient) Query(ctx context.Context, query string) (model.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, warnings, err := c.api.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(warnings) > 0 {
		log.Printf("Prometheus warnings for query %q: %v", query, warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T for query %q", result, query)
	}
	return vector, nil
}

// QueryRange evaluates a query over a time range and returns the matrix of
// per-step samples.
func (c *PromClient) QueryRange(ctx context.Context, query string, r v1.Range) (model.Matrix, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, warnings, err := c.api.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("range query failed: %w", err)
	}
	if len(warnings) > 0 {
		log.Printf("Prometheus warnings for range query %q: %v", query, warnings)
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T for range query %q", result, query)
	}
	return matrix, nil
}

// IsAvailable checks the backend with a trivial query.
func (c *PromClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, _, err := c.api.Query(ctx, "up", time.Now())
	return err == nil
}

// FallbackClient stands in when the real backend cannot be reached at
// startup. All queries succeed with empty results, so every insight degrades
// to its neutral value instead of failing requests.
type FallbackClient struct{}

func (FallbackClient) Query(ctx context.Context, query string) (model.Vector, error) {
	return model.Vector{}, nil
}

func (FallbackClient) QueryRange(ctx context.Context, query string, r v1.Range) (model.Matrix, error) {
	return model.Matrix{}, nil
}

func (FallbackClient) IsAvailable(ctx context.Context) bool {
	return false
}

// NewClient connects to the configured backend and checks it once. If the
// client cannot be built or the check fails, a FallbackClient is installed
// instead. The decision is made here, at startup, and never revisited.
func NewClient(cfg config.BackendConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	client, err := NewPromClient(cfg.URL, timeout)
	if err != nil {
		log.Printf("Failed to initialize Prometheus client for %s: %v, using fallback client", cfg.URL, err)
		return FallbackClient{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if !client.IsAvailable(ctx) {
		log.Printf("Prometheus at %s is not reachable, using fallback client", cfg.URL)
		return FallbackClient{}
	}

	log.Printf("Connected to Prometheus at %s", cfg.URL)
	return client
}
