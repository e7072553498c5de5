package wizard

import (
	"context"
	"regexp"

	"github.com/charmbracelet/huh"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// runClusterIdentityGroup prompts for cluster name, location and server type.
func runClusterIdentityGroup(ctx context.Context, result *WizardResult) error {
	result.ServerType = ServerTypes[0].Value

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("1-32 lowercase alphanumeric characters or hyphens").
				Placeholder("my-cluster").
				Value(&result.ClusterName).
				Validate(validateClusterName),
			huh.NewSelect[string]().
				Title("Location").
				Description("Hetzner Cloud datacenter").
				Options(LocationsToOptions()...).
				Value(&result.Location),
			huh.NewSelect[string]().
				Title("Server Type").
				Description("Machine size for all cluster nodes").
				Options(ServerTypesToOptions(ServerTypes)...).
				Value(&result.ServerType),
		).Title("Cluster Identity"),
	).RunWithContext(ctx)
}

// runNodesGroup prompts for the secondary node count.
func runNodesGroup(ctx context.Context, result *WizardResult) error {
	result.SecondaryCount = 1

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Secondary Nodes").
				Description("Nodes that join the cluster after the primary initializes it").
				Options(SecondaryCountOptions...).
				Value(&result.SecondaryCount),
		).Title("Nodes"),
	).RunWithContext(ctx)
}

// runKubernetesGroup prompts for the Kubernetes version and join strategy.
func runKubernetesGroup(ctx context.Context, result *WizardResult) error {
	result.KubernetesVersion = KubernetesVersions[0].Value
	result.JoinStrategy = "remote"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kubernetes Version").
				Description("Kubernetes minor version line").
				Options(VersionsToOptions(KubernetesVersions)...).
				Value(&result.KubernetesVersion),
			huh.NewSelect[string]().
				Title("Join Strategy").
				Description("How secondaries obtain their join credential").
				Options(JoinStrategyOptions...).
				Value(&result.JoinStrategy),
		).Title("Kubernetes"),
	).RunWithContext(ctx)
}

// runWorkloadGroup prompts for the optional post-bootstrap workload.
func runWorkloadGroup(ctx context.Context, result *WizardResult) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Deploy a Workload?").
				Description("Apply a manifest from a git repository once the cluster is ready").
				Value(&result.DeployWorkload),
		).Title("Workload"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	if !result.DeployWorkload {
		return nil
	}

	result.FailurePolicy = "warn"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Repository URL").
				Placeholder("https://github.com/example/app.git").
				Value(&result.WorkloadRepo),
			huh.NewInput().
				Title("Manifest Path").
				Description("Path to the manifest within the repository").
				Placeholder("deploy/app.yaml").
				Value(&result.WorkloadPath),
			huh.NewSelect[string]().
				Title("On Failure").
				Description("What to do when the deployment fails").
				Options(FailurePolicyOptions...).
				Value(&result.FailurePolicy),
		).Title("Workload Configuration"),
	).RunWithContext(ctx)
}

// validateClusterName validates the cluster name format.
func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if !clusterNameRegex.MatchString(s) {
		return errClusterNameInvalid
	}
	return nil
}
