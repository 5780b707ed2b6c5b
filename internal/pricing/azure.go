package pricing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
)

// AzureProvider derives unit rates from the subscription's price sheet
// entry for the cluster's dominant VM size. It also reports the
// subscription's trailing 30-day spend through the cost management API.
type AzureProvider struct {
	subscriptionID string
	region         string
	vmSize         string
	credential     *azidentity.DefaultAzureCredential
}

// NewAzureProvider builds a provider for one region and VM size using the
// default credential chain and the AZURE_SUBSCRIPTION_ID environment
// variable.
func NewAzureProvider(region, vmSize string) (*AzureProvider, error) {
	subscriptionID := os.Getenv("AZURE_SUBSCRIPTION_ID")
	if subscriptionID == "" {
		return nil, fmt.Errorf("AZURE_SUBSCRIPTION_ID environment variable not set")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &AzureProvider{
		subscriptionID: subscriptionID,
		region:         region,
		vmSize:         vmSize,
		credential:     credential,
	}, nil
}

func (p *AzureProvider) Name() string { return "azure" }

// Quote resolves the VM size's shape from the resource SKU catalog and its
// hourly price from the subscription price sheet, then splits the price
// into unit rates.
func (p *AzureProvider) Quote(ctx context.Context) (*RateQuote, error) {
	shape, err := p.vmShape(ctx)
	if err != nil {
		return nil, err
	}

	price, err := p.vmHourlyPrice(ctx)
	if err != nil {
		return nil, err
	}

	cpuRate, memoryRate := splitInstanceRate(price, shape.VCPUs, shape.MemoryGiB)
	return &RateQuote{
		Rates: Rates{CPUCoreHourly: cpuRate, MemoryGiBHourly: memoryRate},
		Node:  shape,
	}, nil
}

func (p *AzureProvider) vmShape(ctx context.Context) (*NodeShape, error) {
	client, err := armcompute.NewResourceSKUsClient(p.subscriptionID, p.credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource SKU client: %w", err)
	}

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resource SKUs: %w", err)
		}
		for _, sku := range page.Value {
			if sku.Name == nil || *sku.Name != p.vmSize {
				continue
			}
			if sku.ResourceType != nil && *sku.ResourceType != "virtualMachines" {
				continue
			}

			shape := &NodeShape{InstanceType: p.vmSize}
			for _, capability := range sku.Capabilities {
				if capability.Name == nil || capability.Value == nil {
					continue
				}
				switch *capability.Name {
				case "vCPUs":
					shape.VCPUs, _ = strconv.ParseFloat(*capability.Value, 64)
				case "MemoryGB":
					shape.MemoryGiB, _ = strconv.ParseFloat(*capability.Value, 64)
				}
			}
			if shape.VCPUs > 0 && shape.MemoryGiB > 0 {
				return shape, nil
			}
		}
	}

	return nil, fmt.Errorf("VM size %s not found in resource SKUs", p.vmSize)
}

func (p *AzureProvider) vmHourlyPrice(ctx context.Context) (float64, error) {
	client, err := armconsumption.NewPriceSheetClient(p.subscriptionID, p.credential, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create price sheet client: %w", err)
	}

	resp, err := client.Get(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get price sheet: %w", err)
	}
	if resp.Properties == nil {
		return 0, fmt.Errorf("price sheet has no entries")
	}

	// Price sheet meters use names like "D4s v3", not the VM size string.
	meterName := meterNameForSize(p.vmSize)
	for _, item := range resp.Properties.Pricesheets {
		if item == nil || item.UnitPrice == nil || item.MeterDetails == nil {
			continue
		}
		details := item.MeterDetails
		if details.MeterCategory == nil || *details.MeterCategory != "Virtual Machines" {
			continue
		}
		if details.MeterName == nil || !strings.Contains(*details.MeterName, meterName) {
			continue
		}
		if *item.UnitPrice > 0 {
			return *item.UnitPrice, nil
		}
	}

	return 0, fmt.Errorf("no price sheet entry for VM size %s", p.vmSize)
}

// SpendLast30Days sums the subscription's actual daily cost over the
// trailing 30 days.
func (p *AzureProvider) SpendLast30Days(ctx context.Context) (float64, error) {
	client, err := armcostmanagement.NewQueryClient(p.credential, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create cost management client: %w", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)

	exportType := armcostmanagement.ExportTypeActualCost
	timeframe := armcostmanagement.TimeframeTypeCustom
	granularity := armcostmanagement.GranularityTypeDaily
	aggregation := armcostmanagement.FunctionTypeSum

	definition := armcostmanagement.QueryDefinition{
		Type:      &exportType,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &start,
			To:   &end,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: &aggregation,
				},
			},
		},
	}

	scope := fmt.Sprintf("/subscriptions/%s", p.subscriptionID)
	resp, err := client.Usage(ctx, scope, definition, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to query subscription spend: %w", err)
	}

	var total float64
	if resp.Properties != nil {
		for _, row := range resp.Properties.Rows {
			if len(row) == 0 {
				continue
			}
			if cost, ok := row[0].(float64); ok {
				total += cost
			}
		}
	}
	return total, nil
}

// meterNameForSize turns a VM size like "Standard_D4s_v3" into the meter
// name fragment "D4s v3".
func meterNameForSize(vmSize string) string {
	return strings.ReplaceAll(strings.TrimPrefix(vmSize, "Standard_"), "_", " ")
}

func stringPtr(s string) *string {
	return &s
}
