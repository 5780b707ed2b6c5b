package cluster

import (
	"fmt"
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/kubefinops/insights/internal/config"
)

// Client wraps the Kubernetes clientsets used for cluster inventory: the
// core API for objects and the metrics API for live usage.
type Client struct {
	clientset kubernetes.Interface
	metrics   versioned.Interface
}

// NewClient connects to the cluster, in-cluster when configured and via
// kubeconfig otherwise.
func NewClient(cfg config.KubernetesConfig) (*Client, error) {
	restConfig, err := buildRESTConfig(cfg)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}
	metricsClient, err := versioned.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics clientset: %w", err)
	}

	return &Client{clientset: clientset, metrics: metricsClient}, nil
}

func buildRESTConfig(cfg config.KubernetesConfig) (*rest.Config, error) {
	if cfg.InCluster {
		restConfig, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster config: %w", err)
		}
		return restConfig, nil
	}

	kubeconfig := cfg.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
	}
	return restConfig, nil
}

// Clientset exposes the core clientset for components that only need
// object access, such as cloud provider detection.
func (c *Client) Clientset() kubernetes.Interface {
	return c.clientset
}
