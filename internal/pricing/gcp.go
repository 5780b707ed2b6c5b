package pricing

import (
	"context"
	"fmt"
	"log"
	"os"

	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"
	"google.golang.org/api/cloudbilling/v1"
)

// Compute Engine's service ID in the Cloud Billing catalog.
const computeEngineService = "services/6F81-5844-456A"

// GCPProvider reads per-core and per-GiB on-demand rates straight from the
// Cloud Billing catalog; unlike AWS and Azure there is no instance price to
// split. The machine type only determines the reported node shape.
type GCPProvider struct {
	region       string
	zone         string
	instanceType string
	projectID    string
}

// NewGCPProvider builds a provider for one region. Zone and instance type
// may be empty; they are only needed to resolve the node shape.
func NewGCPProvider(region, zone, instanceType string) *GCPProvider {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = os.Getenv("GCP_PROJECT")
	}
	return &GCPProvider{
		region:       region,
		zone:         zone,
		instanceType: instanceType,
		projectID:    projectID,
	}
}

func (p *GCPProvider) Name() string { return "gcp" }

// Quote scans the billing catalog for the region's CPU and RAM rates. A
// missing node shape is not an error; the rates stand on their own.
func (p *GCPProvider) Quote(ctx context.Context) (*RateQuote, error) {
	service, err := cloudbilling.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Billing client: %w", err)
	}

	cpuRate, memoryRate, err := p.catalogRates(ctx, service)
	if err != nil {
		return nil, err
	}

	quote := &RateQuote{Rates: Rates{CPUCoreHourly: cpuRate, MemoryGiBHourly: memoryRate}}
	shape, err := p.machineShape(ctx)
	if err != nil {
		log.Printf("Failed to resolve GCP machine shape: %v", err)
	} else {
		quote.Node = shape
	}
	return quote, nil
}

func (p *GCPProvider) catalogRates(ctx context.Context, service *cloudbilling.APIService) (float64, float64, error) {
	var cpuRate, memoryRate float64

	err := service.Services.Skus.List(computeEngineService).Pages(ctx, func(page *cloudbilling.ListSkusResponse) error {
		for _, sku := range page.Skus {
			if sku.Category == nil || sku.Category.ResourceFamily != "Compute" || sku.Category.UsageType != "OnDemand" {
				continue
			}
			if !skuServesRegion(sku, p.region) {
				continue
			}
			switch sku.Category.ResourceGroup {
			case "CPU":
				if rate, ok := skuHourlyRate(sku); ok && cpuRate == 0 {
					cpuRate = rate
				}
			case "RAM":
				if rate, ok := skuHourlyRate(sku); ok && memoryRate == 0 {
					memoryRate = rate
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to scan pricing catalog: %w", err)
	}
	if cpuRate == 0 || memoryRate == 0 {
		return 0, 0, fmt.Errorf("no CPU/RAM pricing found for region %s", p.region)
	}
	return cpuRate, memoryRate, nil
}

func (p *GCPProvider) machineShape(ctx context.Context) (*NodeShape, error) {
	if p.projectID == "" || p.zone == "" || p.instanceType == "" {
		return nil, fmt.Errorf("project, zone and machine type are all required")
	}

	client, err := compute.NewMachineTypesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create machine types client: %w", err)
	}
	defer client.Close()

	machineType, err := client.Get(ctx, &computepb.GetMachineTypeRequest{
		Project:     p.projectID,
		Zone:        p.zone,
		MachineType: p.instanceType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get machine type %s: %w", p.instanceType, err)
	}

	return &NodeShape{
		InstanceType: p.instanceType,
		VCPUs:        float64(machineType.GetGuestCpus()),
		MemoryGiB:    float64(machineType.GetMemoryMb()) / 1024,
	}, nil
}

func skuServesRegion(sku *cloudbilling.Sku, region string) bool {
	for _, serviceRegion := range sku.ServiceRegions {
		if serviceRegion == region || serviceRegion == "global" {
			return true
		}
	}
	return false
}

func skuHourlyRate(sku *cloudbilling.Sku) (float64, bool) {
	if len(sku.PricingInfo) == 0 {
		return 0, false
	}
	expression := sku.PricingInfo[0].PricingExpression
	if expression == nil || len(expression.TieredRates) == 0 {
		return 0, false
	}
	price := expression.TieredRates[0].UnitPrice
	if price == nil {
		return 0, false
	}
	rate := float64(price.Units) + float64(price.Nanos)/1e9
	if rate <= 0 {
		return 0, false
	}
	return rate, true
}
