package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Backend     BackendConfig     `yaml:"backend"`
	Pushgateway PushgatewayConfig `yaml:"pushgateway"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Insights    InsightsConfig    `yaml:"insights"`
	Kubernetes  KubernetesConfig  `yaml:"kubernetes"`
	API         APIConfig         `yaml:"api"`
}

// BackendConfig holds metrics backend connection settings
type BackendConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// PushgatewayConfig holds optional Pushgateway push settings.
// A push interval of 0 disables pushing.
type PushgatewayConfig struct {
	URL                 string `yaml:"url"`
	PushIntervalSeconds int    `yaml:"pushIntervalSeconds"`
}

// PricingConfig holds hourly rate resolution settings
type PricingConfig struct {
	CloudProvider       string  `yaml:"cloudProvider"`
	Region              string  `yaml:"region"`
	CPUHourlyCost       float64 `yaml:"cpuHourlyCost"`
	MemoryGiBHourlyCost float64 `yaml:"memoryGibHourlyCost"`
	CacheTTLHours       int     `yaml:"cacheTtlHours"`
}

// InsightsConfig holds insight computation configuration.
// A refresh interval of 0 disables the background gauge refresh.
type InsightsConfig struct {
	RefreshIntervalMinutes int `yaml:"refreshIntervalMinutes"`
}

// KubernetesConfig holds Kubernetes connection settings
type KubernetesConfig struct {
	Kubeconfig string `yaml:"kubeconfig"`
	InCluster  bool   `yaml:"inCluster"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port                int      `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	CORSAllowedOrigins  []string `yaml:"corsAllowedOrigins"`
	Authentication      struct {
		Enabled bool   `yaml:"enabled"`
		JWTKey  string `yaml:"jwtKey"`
	} `yaml:"authentication"`
	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

// setDefaults initializes configuration with default values
func setDefaults(config *Config) {
	config.Backend.URL = "http://prometheus-kube-prometheus-prometheus.monitoring.svc.cluster.local:9090"
	config.Backend.TimeoutSeconds = 30
	config.Pushgateway.URL = "http://prometheus-pushgateway.monitoring.svc.cluster.local:9091"
	config.Pushgateway.PushIntervalSeconds = 0
	config.Pricing.CPUHourlyCost = 0.04
	config.Pricing.MemoryGiBHourlyCost = 0.01
	config.Pricing.CacheTTLHours = 24
	config.Insights.RefreshIntervalMinutes = 15
	config.API.Port = 8000
	config.API.ReadTimeoutSeconds = 30
	config.API.WriteTimeoutSeconds = 30
	config.API.CORSAllowedOrigins = []string{"*"}
	config.API.RateLimit.RequestsPerSecond = 50
	config.API.RateLimit.Burst = 100
}

// Load reads configuration from file and environment
func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	setDefaults(config)

	// Load from file if provided
	if configPath != "" {
		data, err := ioutil.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	applyEnvironment(config)

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvironment overrides file values with environment variables.
// Variable names match the deployment manifests.
func applyEnvironment(config *Config) {
	if v := os.Getenv("PROMETHEUS_URL"); v != "" {
		config.Backend.URL = v
	}
	if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
		config.Pushgateway.URL = v
	}
	if f, ok := envFloat("CPU_HOURLY_COST"); ok {
		config.Pricing.CPUHourlyCost = f
	}
	if f, ok := envFloat("MEMORY_GB_HOURLY_COST"); ok {
		config.Pricing.MemoryGiBHourlyCost = f
	}
	if n, ok := envInt("PORT"); ok {
		config.API.Port = n
	}
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// validate checks if the configuration is valid
func validate(config *Config) error {
	if config.Backend.URL == "" {
		return fmt.Errorf("backend URL must not be empty")
	}
	if config.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if config.API.Port <= 0 || config.API.Port > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535")
	}
	if config.Pricing.CPUHourlyCost < 0 || config.Pricing.MemoryGiBHourlyCost < 0 {
		return fmt.Errorf("hourly costs must not be negative")
	}
	if config.Pricing.CacheTTLHours < 0 {
		return fmt.Errorf("pricing cache TTL must not be negative")
	}
	if config.Insights.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("insights refresh interval must not be negative")
	}
	if config.Pushgateway.PushIntervalSeconds < 0 {
		return fmt.Errorf("pushgateway interval must not be negative")
	}
	if config.API.Authentication.Enabled && config.API.Authentication.JWTKey == "" {
		return fmt.Errorf("JWT key is required when authentication is enabled")
	}
	if config.API.RateLimit.Enabled && config.API.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}
	return nil
}
