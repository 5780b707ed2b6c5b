package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awspricing "github.com/aws/aws-sdk-go/service/pricing"
	"github.com/aws/aws-sdk-go/service/sts"
)

// AWSProvider derives unit rates from the EC2 on-demand price of the
// cluster's dominant instance type.
type AWSProvider struct {
	region       string
	instanceType string
	pricing      *awspricing.Pricing
	sts          *sts.STS
}

// NewAWSProvider builds a provider for one region and instance type. The
// price list API is only served out of us-east-1, so the pricing client
// always points there regardless of the cluster region.
func NewAWSProvider(region, instanceType string) (*AWSProvider, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	pricingSess := sess.Copy(&aws.Config{Region: aws.String("us-east-1")})

	return &AWSProvider{
		region:       region,
		instanceType: instanceType,
		pricing:      awspricing.New(pricingSess),
		sts:          sts.New(sess),
	}, nil
}

func (p *AWSProvider) Name() string { return "aws" }

// Quote validates credentials, fetches the on-demand price for the
// instance type and splits it into unit rates by the instance shape.
func (p *AWSProvider) Quote(ctx context.Context) (*RateQuote, error) {
	if _, err := p.sts.GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return nil, fmt.Errorf("failed to validate AWS credentials: %w", err)
	}

	out, err := p.pricing.GetProductsWithContext(ctx, &awspricing.GetProductsInput{
		ServiceCode: aws.String("AmazonEC2"),
		Filters: []*awspricing.Filter{
			termMatch("instanceType", p.instanceType),
			termMatch("location", regionDescription(p.region)),
			termMatch("operatingSystem", "Linux"),
			termMatch("preInstalledSw", "NA"),
			termMatch("tenancy", "Shared"),
			termMatch("capacitystatus", "Used"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if len(out.PriceList) == 0 {
		return nil, fmt.Errorf("no pricing found for instance type %s in %s", p.instanceType, p.region)
	}

	price, shape, err := parsePriceListEntry(out.PriceList[0], p.instanceType)
	if err != nil {
		return nil, err
	}

	cpuRate, memoryRate := splitInstanceRate(price, shape.VCPUs, shape.MemoryGiB)
	return &RateQuote{
		Rates: Rates{CPUCoreHourly: cpuRate, MemoryGiBHourly: memoryRate},
		Node:  shape,
	}, nil
}

func termMatch(field, value string) *awspricing.Filter {
	return &awspricing.Filter{
		Type:  aws.String(awspricing.FilterTypeTermMatch),
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// parsePriceListEntry walks one price list document for the instance shape
// and the hourly on-demand USD price.
func parsePriceListEntry(entry aws.JSONValue, instanceType string) (float64, *NodeShape, error) {
	product, ok := entry["product"].(map[string]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("price list entry has no product section")
	}
	attributes, ok := product["attributes"].(map[string]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("price list entry has no product attributes")
	}

	shape := &NodeShape{InstanceType: instanceType}
	if v, ok := attributes["vcpu"].(string); ok {
		shape.VCPUs, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := attributes["memory"].(string); ok {
		shape.MemoryGiB = parseMemoryGiB(v)
	}

	terms, ok := entry["terms"].(map[string]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("price list entry has no terms section")
	}
	onDemand, ok := terms["OnDemand"].(map[string]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("no on-demand terms for instance type %s", instanceType)
	}

	for _, term := range onDemand {
		termMap, ok := term.(map[string]interface{})
		if !ok {
			continue
		}
		dimensions, ok := termMap["priceDimensions"].(map[string]interface{})
		if !ok {
			continue
		}
		for _, dimension := range dimensions {
			dimensionMap, ok := dimension.(map[string]interface{})
			if !ok {
				continue
			}
			if unit, ok := dimensionMap["unit"].(string); !ok || unit != "Hrs" {
				continue
			}
			prices, ok := dimensionMap["pricePerUnit"].(map[string]interface{})
			if !ok {
				continue
			}
			usd, ok := prices["USD"].(string)
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil || price <= 0 {
				continue
			}
			return price, shape, nil
		}
	}

	return 0, nil, fmt.Errorf("no hourly on-demand price found for instance type %s", instanceType)
}

// parseMemoryGiB parses attribute values like "16 GiB" or "1,952 GiB".
func parseMemoryGiB(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// regionDescription maps a region code to the location name the price list
// API filters on. Unknown regions pass through unchanged.
func regionDescription(region string) string {
	descriptions := map[string]string{
		"us-east-1":      "US East (N. Virginia)",
		"us-east-2":      "US East (Ohio)",
		"us-west-1":      "US West (N. California)",
		"us-west-2":      "US West (Oregon)",
		"ca-central-1":   "Canada (Central)",
		"eu-west-1":      "EU (Ireland)",
		"eu-west-2":      "EU (London)",
		"eu-west-3":      "EU (Paris)",
		"eu-central-1":   "EU (Frankfurt)",
		"eu-north-1":     "EU (Stockholm)",
		"ap-northeast-1": "Asia Pacific (Tokyo)",
		"ap-northeast-2": "Asia Pacific (Seoul)",
		"ap-southeast-1": "Asia Pacific (Singapore)",
		"ap-southeast-2": "Asia Pacific (Sydney)",
		"ap-south-1":     "Asia Pacific (Mumbai)",
		"sa-east-1":      "South America (Sao Paulo)",
	}
	if description, ok := descriptions[region]; ok {
		return description
	}
	return region
}
