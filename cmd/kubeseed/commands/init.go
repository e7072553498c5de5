package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeseed/kubeseed/cmd/kubeseed/handlers"
)

// Init returns the command for interactively creating a cluster configuration.
//
// This command guides users through creating a cluster configuration YAML
// file using an interactive wizard with text inputs and single-select
// prompts.
//
// Flags:
//
//	--output, -o: Path to output file (default "kubeseed.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a cluster configuration",
		Long: `Interactively create a cluster configuration file.

This command guides you through configuring your Kubernetes cluster
step by step. It will ask about:

  - Cluster identity (name, location and server type)
  - Worker node count
  - Kubernetes version and join credential strategy
  - An optional workload manifest to deploy after bootstrap

Node names and private addresses are derived from the cluster name,
so the generated file is ready for 'kubeseed apply' as-is.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "kubeseed.yaml", "Output file path")

	return cmd
}
