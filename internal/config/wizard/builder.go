package wizard

import (
	"fmt"

	"github.com/kubeseed/kubeseed/internal/config"
)

// subnetHostBase is the first host offset used for node addresses inside
// the default subnet. .10 is the primary, .11 onward the secondaries.
const subnetHostBase = 10

// BuildConfig creates a Config struct from the wizard result.
// Node names and private addresses are derived from the cluster name
// and the default subnet layout.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		ClusterName: result.ClusterName,
		Location:    result.Location,
		ServerType:  result.ServerType,
		Kubernetes: config.KubernetesConfig{
			Version: result.KubernetesVersion,
		},
		Join: config.JoinConfig{
			Strategy: config.JoinStrategy(result.JoinStrategy),
		},
	}

	cfg.Nodes.Primary = config.NodeConfig{
		Name:      result.ClusterName + "-primary",
		PrivateIP: hostAddress(subnetHostBase),
	}
	for i := 0; i < result.SecondaryCount; i++ {
		cfg.Nodes.Secondaries = append(cfg.Nodes.Secondaries, config.NodeConfig{
			Name:      fmt.Sprintf("%s-worker-%d", result.ClusterName, i+1),
			PrivateIP: hostAddress(subnetHostBase + 1 + i),
		})
	}

	if result.DeployWorkload {
		cfg.Workload = &config.WorkloadConfig{
			OnFailure: result.FailurePolicy,
			Git: &config.GitWorkload{
				Repo: result.WorkloadRepo,
				Path: result.WorkloadPath,
			},
		}
	}

	return cfg
}

// hostAddress places a host in the default 10.0.1.0/24 subnet.
func hostAddress(host int) string {
	return fmt.Sprintf("10.0.1.%d", host)
}
