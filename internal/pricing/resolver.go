package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/kubefinops/insights/internal/config"
)

// Resolver produces the rate model the rest of the service runs on. Cloud
// pricing APIs are consulted only when a provider is configured (or
// auto-detection is requested); any lookup problem falls back to the
// configured rates, so Resolve never fails.
type Resolver struct {
	cfg       config.PricingConfig
	clientset kubernetes.Interface
	cache     *modelCache
}

// NewResolver creates a resolver. The clientset may be nil when the service
// runs without cluster access; auto-detection and shape discovery are then
// skipped.
func NewResolver(cfg config.PricingConfig, clientset kubernetes.Interface) *Resolver {
	return &Resolver{
		cfg:       cfg,
		clientset: clientset,
		cache:     newModelCache(time.Duration(cfg.CacheTTLHours) * time.Hour),
	}
}

// Resolve returns the current rate model, from cache when fresh.
func (r *Resolver) Resolve(ctx context.Context) Model {
	if cached, ok := r.cache.Get(); ok {
		return cached
	}

	model := r.resolve(ctx)
	model.ResolvedAt = time.Now().UTC()
	r.cache.Set(model)
	return model
}

// Rates is a convenience accessor for callers that only need the unit
// prices.
func (r *Resolver) Rates(ctx context.Context) Rates {
	return r.Resolve(ctx).Rates
}

func (r *Resolver) resolve(ctx context.Context) Model {
	name := r.cfg.CloudProvider
	if name == "" {
		return r.configuredModel()
	}

	region := r.cfg.Region
	if name == "auto" {
		if r.clientset == nil {
			log.Printf("Cloud provider auto-detection needs a Kubernetes client, using configured rates")
			return r.configuredModel()
		}
		detected, detectedRegion, err := DetectProvider(ctx, r.clientset)
		if err != nil {
			log.Printf("Cloud provider detection failed: %v, using configured rates", err)
			return r.configuredModel()
		}
		if detected == "default" {
			return r.configuredModel()
		}
		name = detected
		if region == "" {
			region = detectedRegion
		}
	}
	if region == "" {
		region = defaultRegion(name)
	}

	provider, err := r.buildProvider(ctx, name, region)
	if err != nil {
		log.Printf("Failed to initialize %s pricing provider: %v, using configured rates", name, err)
		return r.configuredModel()
	}

	quote, err := provider.Quote(ctx)
	if err != nil {
		log.Printf("Failed to resolve %s pricing: %v, using configured rates", provider.Name(), err)
		return r.configuredModel()
	}
	log.Printf("Resolved %s pricing for %s: $%.4f/core-hour, $%.4f/GiB-hour", provider.Name(), region, quote.Rates.CPUCoreHourly, quote.Rates.MemoryGiBHourly)

	model := Model{
		Rates:    quote.Rates,
		Provider: provider.Name(),
		Region:   region,
		Source:   provider.Name(),
		Node:     quote.Node,
	}
	if reporter, ok := provider.(SpendReporter); ok {
		if spend, err := reporter.SpendLast30Days(ctx); err != nil {
			log.Printf("Failed to query %s account spend: %v", provider.Name(), err)
		} else {
			model.SpendLast30Days = &spend
		}
	}
	return model
}

// configuredModel returns the rates from the configuration, filling any
// zero value with the built-in default.
func (r *Resolver) configuredModel() Model {
	model := Model{
		Rates: Rates{
			CPUCoreHourly:   r.cfg.CPUHourlyCost,
			MemoryGiBHourly: r.cfg.MemoryGiBHourlyCost,
		},
		Region: r.cfg.Region,
		Source: SourceConfig,
	}
	if model.CPUCoreHourly == 0 {
		model.CPUCoreHourly = DefaultCPUCoreHourly
		model.Source = SourceDefault
	}
	if model.MemoryGiBHourly == 0 {
		model.MemoryGiBHourly = DefaultMemoryGiBHourly
		model.Source = SourceDefault
	}
	return model
}

func (r *Resolver) buildProvider(ctx context.Context, name, region string) (Provider, error) {
	instanceType, zone := "", ""
	if r.clientset != nil {
		var err error
		instanceType, zone, err = DominantInstanceType(ctx, r.clientset)
		if err != nil {
			log.Printf("Failed to determine dominant instance type: %v", err)
		}
	}

	switch name {
	case "aws":
		if instanceType == "" {
			return nil, fmt.Errorf("no instance type discovered for the AWS price lookup")
		}
		return NewAWSProvider(region, instanceType)
	case "azure":
		if instanceType == "" {
			return nil, fmt.Errorf("no VM size discovered for the Azure price lookup")
		}
		return NewAzureProvider(region, instanceType)
	case "gcp":
		return NewGCPProvider(region, zone, instanceType), nil
	default:
		return nil, fmt.Errorf("unknown cloud provider: %s", name)
	}
}
