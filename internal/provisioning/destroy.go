package provisioning

import (
	"fmt"
)

// Destroy tears down every cloud resource belonging to the cluster:
// servers first, then the firewall, network and SSH key. Missing
// resources are skipped, so a partially created cluster tears down
// cleanly.
func Destroy(ctx *Context) error {
	cfg := ctx.Config
	phase := "destroy"

	ctx.Observer.Printf("[%s] destroying cluster %s...", phase, cfg.ClusterName)

	servers, err := ctx.Infra.GetServersByLabel(ctx, ClusterSelector(cfg.ClusterName))
	if err != nil {
		return fmt.Errorf("listing cluster servers: %w", err)
	}
	for _, server := range servers {
		if err := ctx.Infra.DeleteServer(ctx, server.Name); err != nil {
			return fmt.Errorf("deleting server %s: %w", server.Name, err)
		}
		LogResourceDeleted(ctx.Observer, phase, "server", server.Name)
	}

	if err := ctx.Infra.DeleteFirewall(ctx, cfg.ClusterName+"-fw"); err != nil {
		return fmt.Errorf("deleting firewall: %w", err)
	}
	LogResourceDeleted(ctx.Observer, phase, "firewall", cfg.ClusterName+"-fw")

	if err := ctx.Infra.DeleteNetwork(ctx, cfg.ClusterName+"-net"); err != nil {
		return fmt.Errorf("deleting network: %w", err)
	}
	LogResourceDeleted(ctx.Observer, phase, "network", cfg.ClusterName+"-net")

	if err := ctx.Infra.DeleteSSHKey(ctx, cfg.ClusterName+"-key"); err != nil {
		return fmt.Errorf("deleting ssh key: %w", err)
	}
	LogResourceDeleted(ctx.Observer, phase, "ssh key", cfg.ClusterName+"-key")

	ctx.Observer.Printf("[%s] cluster %s destroyed", phase, cfg.ClusterName)
	return nil
}
