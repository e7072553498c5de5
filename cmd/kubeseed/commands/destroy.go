package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeseed/kubeseed/cmd/kubeseed/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command removes all cluster resources from Hetzner Cloud.
// It deletes resources in dependency order: servers first, then the
// firewall, network and SSH key.
func Destroy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy the cluster and all associated resources",
		Long: `Destroy removes all cluster resources from Hetzner Cloud.

This command deletes all resources associated with the cluster including:
  - Servers (control plane and worker nodes)
  - Firewall
  - Network and subnet
  - SSH key

Resources are deleted in dependency order to ensure clean teardown.

Example:
  kubeseed destroy -c kubeseed.yaml

WARNING: This operation is irreversible. All cluster data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to cluster configuration file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
