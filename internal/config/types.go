// Package config defines the cluster configuration schema and loading.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "kubeseed.yaml"

// Config holds the full cluster configuration.
type Config struct {
	ClusterName string `yaml:"cluster_name"`
	// Location is the cloud datacenter, e.g. nbg1, fsn1, hel1.
	Location string `yaml:"location"`
	// Image is the boot image for all nodes.
	Image string `yaml:"image"`
	// ServerType is the machine size for all nodes.
	ServerType string `yaml:"server_type"`

	Network       NetworkConfig       `yaml:"network"`
	Nodes         NodesConfig         `yaml:"nodes"`
	SSH           SSHConfig           `yaml:"ssh"`
	Kubernetes    KubernetesConfig    `yaml:"kubernetes"`
	Join          JoinConfig          `yaml:"join"`
	Retry         RetryConfig         `yaml:"retry"`
	Workload      *WorkloadConfig     `yaml:"workload"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
}

// NetworkConfig defines the private network layout.
type NetworkConfig struct {
	CIDR   string `yaml:"cidr"`
	Subnet string `yaml:"subnet"`
	Zone   string `yaml:"zone"` // e.g. eu-central
}

// NodesConfig names the cluster members.
type NodesConfig struct {
	Primary     NodeConfig   `yaml:"primary"`
	Secondaries []NodeConfig `yaml:"secondaries"`
}

// NodeConfig is one cluster member.
type NodeConfig struct {
	Name      string `yaml:"name"`
	PrivateIP string `yaml:"private_ip"`
}

// SSHConfig configures remote access to the nodes.
type SSHConfig struct {
	User string `yaml:"user"`
	// PrivateKeyPath points at an existing key. Empty means a key pair is
	// generated for the run and written next to the config.
	PrivateKeyPath string `yaml:"private_key_path"`
}

// KubernetesConfig configures the cluster bootstrap.
type KubernetesConfig struct {
	// Version is the minor version line, e.g. "1.31".
	Version string `yaml:"version"`
	PodCIDR string `yaml:"pod_cidr"`
	APIPort int    `yaml:"api_port"`
	// OverlayManifest is the network overlay applied after init.
	OverlayManifest string `yaml:"overlay_manifest"`
	// IgnorePreflightErrors selects kubeadm's ignore-all preflight policy.
	// Defaults to true, matching the strict=false variant.
	IgnorePreflightErrors *bool `yaml:"ignore_preflight_errors"`
}

// JoinStrategy selects how the join credential is produced.
type JoinStrategy string

const (
	// JoinStrategyRemote mints a token over the remote transport and parses
	// the output into discrete fields.
	JoinStrategyRemote JoinStrategy = "remote"
	// JoinStrategyFile persists the join command to a well-known path on
	// the primary and fetches it back.
	JoinStrategyFile JoinStrategy = "file"
)

// JoinConfig configures credential issuance.
type JoinConfig struct {
	Strategy JoinStrategy `yaml:"strategy"`
	// FilePath overrides the well-known path for the file strategy.
	FilePath string `yaml:"file_path"`
}

// RetryConfig shapes the init/join retry policy.
type RetryConfig struct {
	Attempts int      `yaml:"attempts"`
	Delay    Duration `yaml:"delay"`
}

// WorkloadConfig configures the post-bootstrap manifest deployment.
type WorkloadConfig struct {
	// OnFailure is "warn" (log and continue) or "fail" (fail the run).
	OnFailure string          `yaml:"on_failure"`
	Git       *GitWorkload    `yaml:"git"`
	Object    *ObjectWorkload `yaml:"object"`
}

// GitWorkload names a manifest in a git repository.
type GitWorkload struct {
	Repo string `yaml:"repo"`
	Path string `yaml:"path"`
}

// ObjectWorkload names a manifest in object storage.
type ObjectWorkload struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	// Manifest is a local file uploaded to Bucket/Key before the run.
	// Empty means the object is expected to exist already.
	Manifest string `yaml:"manifest"`
}

// ObjectStorageConfig configures the S3-compatible endpoint used for
// object workloads. Credentials come from the environment
// (KUBESEED_S3_ACCESS_KEY / KUBESEED_S3_SECRET_KEY).
type ObjectStorageConfig struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
}

// APIEndpoint returns the primary's advertised API address as host:port.
func (c *Config) APIEndpoint() string {
	return joinHostPort(c.Nodes.Primary.PrivateIP, c.Kubernetes.APIPort)
}

// IgnorePreflight resolves the preflight policy with its default.
func (c *Config) IgnorePreflight() bool {
	if c.Kubernetes.IgnorePreflightErrors == nil {
		return true
	}
	return *c.Kubernetes.IgnorePreflightErrors
}
