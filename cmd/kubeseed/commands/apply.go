package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeseed/kubeseed/cmd/kubeseed/handlers"
)

// Apply returns the command for provisioning the cluster.
//
// This command handles the complete bootstrap lifecycle: creating the
// cloud infrastructure, installing packages on every node, initializing
// the control plane and joining the workers.
//
// Optional flags:
//
//	--config, -c: Path to cluster configuration YAML file (default: kubeseed.yaml)
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
func Apply() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the cluster",
		Long: `Create or update your Kubernetes cluster.

This command provisions the network, firewall and servers on Hetzner
Cloud, installs the container runtime and kubeadm on every node,
initializes the control plane and joins the worker nodes.

If no config file is specified, it looks for kubeseed.yaml in the
current directory. Use 'kubeseed init' to create a configuration file.

Examples:
  # Create cluster using kubeseed.yaml in current directory
  kubeseed apply

  # Create cluster using a specific config file
  kubeseed apply -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kubeseed.yaml)")

	return cmd
}
