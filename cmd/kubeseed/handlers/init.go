package handlers

import (
	"context"
	"fmt"

	"github.com/kubeseed/kubeseed/internal/config"
	"github.com/kubeseed/kubeseed/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = wizard.FileExists

	// confirmOverwrite asks before clobbering an existing config.
	confirmOverwrite = wizard.ConfirmOverwrite

	// runWizard runs the interactive configuration wizard.
	runWizard = wizard.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("overwrite prompt failed: %w", err)
		}
		if !ok {
			fmt.Println("Aborted, existing configuration left untouched.")
			return nil
		}
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizard.BuildConfig(result)

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("kubeseed - kubeadm clusters on Hetzner Cloud")
	fmt.Println("============================================")
	fmt.Println()
	fmt.Println("This wizard creates a cluster configuration with sensible defaults.")
	fmt.Println("Node names and private addresses are derived from the cluster name.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Cluster Summary")
	fmt.Println("---------------")
	fmt.Printf("  Name:       %s\n", cfg.ClusterName)
	fmt.Printf("  Location:   %s\n", cfg.Location)
	fmt.Printf("  Primary:    %s (%s)\n", cfg.Nodes.Primary.Name, cfg.Nodes.Primary.PrivateIP)
	fmt.Printf("  Workers:    %d\n", len(cfg.Nodes.Secondaries))
	fmt.Printf("  Kubernetes: %s\n", cfg.Kubernetes.Version)
	if cfg.Workload != nil && cfg.Workload.Git != nil {
		fmt.Printf("  Workload:   %s\n", cfg.Workload.Git.Repo)
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Set your Hetzner Cloud API token:")
	fmt.Println("     export HCLOUD_TOKEN=<your-token>")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Create your cluster:")
	fmt.Printf("     kubeseed apply -c %s\n", outputPath)
	fmt.Println()
}
