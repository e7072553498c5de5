package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// clusterNameRegex validates cluster names: 1-32 lowercase alphanumeric with
// hyphens, used as a prefix for every cloud resource.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// Load loads and validates a configuration from a file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path comes from the CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads and validates a configuration from bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default config file location in the current
// working directory.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultConfigFilename
	}
	return filepath.Join(cwd, DefaultConfigFilename)
}

func (c *Config) applyDefaults() {
	if c.Image == "" {
		c.Image = "ubuntu-24.04"
	}
	if c.ServerType == "" {
		c.ServerType = "cx22"
	}
	if c.Network.CIDR == "" {
		c.Network.CIDR = "10.0.0.0/16"
	}
	if c.Network.Subnet == "" {
		c.Network.Subnet = "10.0.1.0/24"
	}
	if c.Network.Zone == "" {
		c.Network.Zone = "eu-central"
	}
	if c.SSH.User == "" {
		c.SSH.User = "root"
	}
	if c.Kubernetes.Version == "" {
		c.Kubernetes.Version = "1.31"
	}
	if c.Kubernetes.PodCIDR == "" {
		c.Kubernetes.PodCIDR = "10.244.0.0/16"
	}
	if c.Kubernetes.APIPort == 0 {
		c.Kubernetes.APIPort = 6443
	}
	if c.Kubernetes.OverlayManifest == "" {
		c.Kubernetes.OverlayManifest = "https://github.com/flannel-io/flannel/releases/latest/download/kube-flannel.yml"
	}
	if c.Join.Strategy == "" {
		c.Join.Strategy = JoinStrategyRemote
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 5
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = Duration(30 * time.Second)
	}
	if c.Workload != nil && c.Workload.OnFailure == "" {
		c.Workload.OnFailure = "warn"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if !clusterNameRegex.MatchString(c.ClusterName) {
		return fmt.Errorf("cluster_name %q must be 1-32 lowercase alphanumeric characters or hyphens", c.ClusterName)
	}
	if c.Location == "" {
		return fmt.Errorf("location is required")
	}

	if _, _, err := net.ParseCIDR(c.Network.CIDR); err != nil {
		return fmt.Errorf("network.cidr: %w", err)
	}
	if _, _, err := net.ParseCIDR(c.Network.Subnet); err != nil {
		return fmt.Errorf("network.subnet: %w", err)
	}
	if _, _, err := net.ParseCIDR(c.Kubernetes.PodCIDR); err != nil {
		return fmt.Errorf("kubernetes.pod_cidr: %w", err)
	}

	if err := validateNode("nodes.primary", c.Nodes.Primary); err != nil {
		return err
	}
	if len(c.Nodes.Secondaries) == 0 {
		return fmt.Errorf("at least one secondary node is required")
	}
	seen := map[string]bool{c.Nodes.Primary.Name: true}
	for i, n := range c.Nodes.Secondaries {
		if err := validateNode(fmt.Sprintf("nodes.secondaries[%d]", i), n); err != nil {
			return err
		}
		if seen[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
	}

	switch c.Join.Strategy {
	case JoinStrategyRemote, JoinStrategyFile:
	default:
		return fmt.Errorf("join.strategy must be %q or %q, got %q", JoinStrategyRemote, JoinStrategyFile, c.Join.Strategy)
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}

	if c.Workload != nil {
		if err := c.Workload.validate(); err != nil {
			return err
		}
		if c.Workload.Object != nil && c.ObjectStorage.Endpoint == "" {
			return fmt.Errorf("workload.object requires object_storage.endpoint")
		}
	}

	return nil
}

func validateNode(field string, n NodeConfig) error {
	if n.Name == "" {
		return fmt.Errorf("%s.name is required", field)
	}
	if net.ParseIP(n.PrivateIP) == nil {
		return fmt.Errorf("%s.private_ip %q is not a valid IP address", field, n.PrivateIP)
	}
	return nil
}

func (w *WorkloadConfig) validate() error {
	if w.OnFailure != "warn" && w.OnFailure != "fail" {
		return fmt.Errorf("workload.on_failure must be \"warn\" or \"fail\", got %q", w.OnFailure)
	}
	if (w.Git == nil) == (w.Object == nil) {
		return fmt.Errorf("workload requires exactly one of git or object")
	}
	if w.Git != nil && (w.Git.Repo == "" || w.Git.Path == "") {
		return fmt.Errorf("workload.git requires repo and path")
	}
	if w.Object != nil && (w.Object.Bucket == "" || w.Object.Key == "") {
		return fmt.Errorf("workload.object requires bucket and key")
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, fmt.Sprintf("%d", port))
}
