package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/kubernetes"

	"github.com/kubefinops/insights/internal/api"
	"github.com/kubefinops/insights/internal/backend"
	"github.com/kubefinops/insights/internal/cluster"
	"github.com/kubefinops/insights/internal/config"
	"github.com/kubefinops/insights/internal/insights"
	"github.com/kubefinops/insights/internal/metrics"
	"github.com/kubefinops/insights/internal/pricing"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that can be canceled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Initialize the metric registry and instruments
	registry := prometheus.NewRegistry()
	publisher := metrics.NewPublisher(registry)

	// Connect to the metrics backend, falling back to empty results when it
	// is unreachable
	backendClient := backend.NewClient(cfg.Backend)

	// The Kubernetes client is optional; insights work from the backend alone
	clusterClient, err := cluster.NewClient(cfg.Kubernetes)
	if err != nil {
		log.Printf("Kubernetes client unavailable: %v", err)
		clusterClient = nil
	}

	var clientset kubernetes.Interface
	if clusterClient != nil {
		clientset = clusterClient.Clientset()
	}

	// Resolve hourly rates once at startup
	resolver := pricing.NewResolver(cfg.Pricing, clientset)
	model := resolver.Resolve(ctx)
	log.Printf("Pricing: $%.4f/core-hour, $%.4f/GiB-hour (source %s)",
		model.CPUCoreHourly, model.MemoryGiBHourly, model.Source)

	// Initialize the insight service and its background refresh
	refreshInterval := time.Duration(cfg.Insights.RefreshIntervalMinutes) * time.Minute
	insightSvc := insights.New(ctx, backendClient, publisher, model.Rates, refreshInterval)
	if err := insightSvc.Start(); err != nil {
		log.Fatalf("Failed to start insight service: %v", err)
	}

	// Prewarm the gauges so the first scrape is not empty
	go func() {
		if err := insightSvc.RefreshAll(ctx); err != nil {
			log.Printf("Error initializing metrics: %v", err)
		}
	}()

	// Optional Pushgateway loop
	pushInterval := time.Duration(cfg.Pushgateway.PushIntervalSeconds) * time.Second
	pusher := metrics.NewPusher(cfg.Pushgateway.URL, pushInterval, registry)
	pusher.Start(ctx)

	// Start API server
	server := api.NewServer(cfg.API, insightSvc, resolver, clusterClient, publisher, registry)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	// Wait for context cancellation (shutdown signal)
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down API server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}

	insightSvc.Stop()
	pusher.Stop()

	log.Println("Shutdown complete")
}
