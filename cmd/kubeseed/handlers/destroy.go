package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kubeseed/kubeseed/internal/provisioning"
)

// Factory function variables for destroy - can be replaced in tests.
var (
	// destroyCluster tears down the cluster resources.
	destroyCluster = provisioning.Destroy
)

// Destroy handles the destroy command.
//
// It loads the cluster configuration and deletes all associated resources
// from Hetzner Cloud. Resources are deleted in dependency order: servers
// first, then the firewall, network and SSH key.
func Destroy(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Destroying cluster: %s", cfg.ClusterName)

	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" {
		return fmt.Errorf("HCLOUD_TOKEN environment variable is not set")
	}

	pCtx := newProvisioningContext(ctx, cfg, newInfraClient(token), nil)

	if err := destroyCluster(pCtx); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	log.Printf("Cluster %s destroyed successfully", cfg.ClusterName)
	return nil
}
