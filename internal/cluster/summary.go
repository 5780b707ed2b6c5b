package cluster

import (
	"context"
	"fmt"
	"log"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	instanceTypeLabel       = "node.kubernetes.io/instance-type"
	legacyInstanceTypeLabel = "beta.kubernetes.io/instance-type"
)

// Summary is a point-in-time inventory of the cluster: node capacity and
// readiness, pod phases and, when the metrics API is up, live usage.
type Summary struct {
	Timestamp   time.Time      `json:"timestamp"`
	Nodes       int            `json:"nodes"`
	ReadyNodes  int            `json:"ready_nodes"`
	Namespaces  int            `json:"namespaces"`
	Pods        PodPhaseCounts `json:"pods"`
	NodeDetails []NodeSummary  `json:"node_details"`
	Usage       *UsageSummary  `json:"usage,omitempty"`
}

// NodeSummary describes one node's readiness and allocatable capacity.
type NodeSummary struct {
	Name                 string  `json:"name"`
	InstanceType         string  `json:"instance_type,omitempty"`
	Ready                bool    `json:"ready"`
	AllocatableCPUCores  float64 `json:"allocatable_cpu_cores"`
	AllocatableMemoryGiB float64 `json:"allocatable_memory_gib"`
}

// PodPhaseCounts tallies pods by lifecycle phase across all namespaces.
type PodPhaseCounts struct {
	Running   int `json:"running"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
	Succeeded int `json:"succeeded"`
}

// UsageSummary is the cluster-wide usage reported by the metrics API.
type UsageSummary struct {
	CPUCores  float64 `json:"cpu_cores"`
	MemoryGiB float64 `json:"memory_gib"`
}

// Summary collects the cluster inventory. Missing node metrics leave Usage
// nil rather than failing the whole summary.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	pods, err := c.clientset.CoreV1().Pods(corev1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	namespaces, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	summary := &Summary{
		Timestamp:   time.Now().UTC(),
		Nodes:       len(nodes.Items),
		Namespaces:  len(namespaces.Items),
		NodeDetails: make([]NodeSummary, 0, len(nodes.Items)),
	}

	for _, node := range nodes.Items {
		ready := nodeReady(node)
		if ready {
			summary.ReadyNodes++
		}
		summary.NodeDetails = append(summary.NodeDetails, NodeSummary{
			Name:                 node.Name,
			InstanceType:         instanceType(node.Labels),
			Ready:                ready,
			AllocatableCPUCores:  float64(node.Status.Allocatable.Cpu().MilliValue()) / 1000,
			AllocatableMemoryGiB: float64(node.Status.Allocatable.Memory().Value()) / (1 << 30),
		})
	}

	for _, pod := range pods.Items {
		switch pod.Status.Phase {
		case corev1.PodRunning:
			summary.Pods.Running++
		case corev1.PodPending:
			summary.Pods.Pending++
		case corev1.PodFailed:
			summary.Pods.Failed++
		case corev1.PodSucceeded:
			summary.Pods.Succeeded++
		}
	}

	summary.Usage = c.clusterUsage(ctx)
	return summary, nil
}

func (c *Client) clusterUsage(ctx context.Context) *UsageSummary {
	nodeMetrics, err := c.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		log.Printf("Node metrics unavailable: %v", err)
		return nil
	}

	usage := &UsageSummary{}
	for _, item := range nodeMetrics.Items {
		usage.CPUCores += float64(item.Usage.Cpu().MilliValue()) / 1000
		usage.MemoryGiB += float64(item.Usage.Memory().Value()) / (1 << 30)
	}
	return usage
}

func nodeReady(node corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}

func instanceType(labels map[string]string) string {
	if t := labels[instanceTypeLabel]; t != "" {
		return t
	}
	return labels[legacyInstanceTypeLabel]
}
