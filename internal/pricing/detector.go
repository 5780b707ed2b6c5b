package pricing

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	instanceTypeLabel       = "node.kubernetes.io/instance-type"
	legacyInstanceTypeLabel = "beta.kubernetes.io/instance-type"

	regionLabel       = "topology.kubernetes.io/region"
	legacyRegionLabel = "failure-domain.beta.kubernetes.io/region"
	zoneLabel         = "topology.kubernetes.io/zone"
)

// DetectProvider inspects the first node's provider ID and labels to work
// out which cloud the cluster runs on, and in which region. Returns
// "default" when nothing identifiable is found.
func DetectProvider(ctx context.Context, clientset kubernetes.Interface) (provider, region string, err error) {
	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{Limit: 1})
	if err != nil {
		return "", "", fmt.Errorf("failed to list nodes: %w", err)
	}
	if len(nodes.Items) == 0 {
		return "", "", fmt.Errorf("no nodes found in cluster")
	}

	node := nodes.Items[0]
	providerID := node.Spec.ProviderID

	switch {
	case strings.HasPrefix(providerID, "azure://"):
		return "azure", regionFromLabels(node.Labels, "azure"), nil
	case strings.HasPrefix(providerID, "aws://"):
		return "aws", regionFromLabels(node.Labels, "aws"), nil
	case strings.HasPrefix(providerID, "gce://"):
		return "gcp", regionFromLabels(node.Labels, "gcp"), nil
	}

	// Some distributions leave ProviderID empty; the managed-service
	// labels still give the cloud away.
	labels := node.Labels
	switch {
	case hasLabelPrefix(labels, "kubernetes.azure.com/"):
		return "azure", regionFromLabels(labels, "azure"), nil
	case hasLabelPrefix(labels, "eks.amazonaws.com/"):
		return "aws", regionFromLabels(labels, "aws"), nil
	case hasLabelPrefix(labels, "cloud.google.com/gke-"):
		return "gcp", regionFromLabels(labels, "gcp"), nil
	}

	return "default", "", nil
}

// DominantInstanceType returns the most common instance type across the
// cluster's nodes, plus the zone of one node running it.
func DominantInstanceType(ctx context.Context, clientset kubernetes.Interface) (instanceType, zone string, err error) {
	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", "", fmt.Errorf("failed to list nodes: %w", err)
	}

	counts := make(map[string]int)
	zones := make(map[string]string)
	for _, node := range nodes.Items {
		t := node.Labels[instanceTypeLabel]
		if t == "" {
			t = node.Labels[legacyInstanceTypeLabel]
		}
		if t == "" {
			continue
		}
		counts[t]++
		if _, ok := zones[t]; !ok {
			zones[t] = node.Labels[zoneLabel]
		}
	}

	var dominant string
	for t, n := range counts {
		if n > counts[dominant] {
			dominant = t
		}
	}
	if dominant == "" {
		return "", "", fmt.Errorf("no instance type labels found on nodes")
	}
	return dominant, zones[dominant], nil
}

func regionFromLabels(labels map[string]string, provider string) string {
	if region := labels[regionLabel]; region != "" {
		return region
	}
	if region := labels[legacyRegionLabel]; region != "" {
		return region
	}
	return defaultRegion(provider)
}

func defaultRegion(provider string) string {
	switch provider {
	case "aws":
		return "us-east-1"
	case "azure":
		return "eastus"
	case "gcp":
		return "us-central1"
	}
	return ""
}

func hasLabelPrefix(labels map[string]string, prefix string) bool {
	for key := range labels {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
