package provisioning

import (
	"context"
	"fmt"
	"net"
	"path/filepath"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/config"
	hcloudinternal "github.com/kubeseed/kubeseed/internal/platform/hcloud"
	"github.com/kubeseed/kubeseed/internal/util/async"
	"github.com/kubeseed/kubeseed/internal/util/keygen"
	"github.com/kubeseed/kubeseed/internal/util/retry"
)

const labelManagedBy = "managed-by"

// ClusterLabels returns the labels stamped on every cloud resource of a
// cluster, and doubles as the selector for finding them again.
func ClusterLabels(clusterName string) map[string]string {
	return map[string]string{
		labelManagedBy: "kubeseed",
		"cluster":      clusterName,
	}
}

// ClusterSelector returns the label selector matching ClusterLabels.
func ClusterSelector(clusterName string) string {
	return fmt.Sprintf("%s=kubeseed,cluster=%s", labelManagedBy, clusterName)
}

// InfrastructurePhase provisions the SSH key, private network, firewall
// and all node servers.
type InfrastructurePhase struct{}

// Name implements Phase.
func (p *InfrastructurePhase) Name() string { return "infrastructure" }

// Provision implements Phase.
func (p *InfrastructurePhase) Provision(ctx *Context) error {
	cfg := ctx.Config
	labels := ClusterLabels(cfg.ClusterName)

	publicKey, err := p.ensureKeyPair(ctx)
	if err != nil {
		return err
	}

	keyID, err := ctx.Infra.EnsureSSHKey(ctx, cfg.ClusterName+"-key", publicKey, labels)
	if err != nil {
		return fmt.Errorf("ensuring ssh key: %w", err)
	}
	ctx.State.SSHKeyID = keyID
	LogResourceCreated(ctx.Observer, p.Name(), "ssh key", cfg.ClusterName+"-key")

	networkID, err := ctx.Infra.EnsureNetwork(ctx, cfg.ClusterName+"-net", cfg.Network.CIDR, labels)
	if err != nil {
		return fmt.Errorf("ensuring network: %w", err)
	}
	ctx.State.NetworkID = networkID
	if err := ctx.Infra.EnsureSubnet(ctx, networkID, cfg.Network.Subnet, cfg.Network.Zone); err != nil {
		return fmt.Errorf("ensuring subnet: %w", err)
	}
	LogResourceCreated(ctx.Observer, p.Name(), "network", cfg.ClusterName+"-net")

	firewallID, err := ctx.Infra.EnsureFirewall(ctx, cfg.ClusterName+"-fw", cfg.Kubernetes.APIPort, labels)
	if err != nil {
		return fmt.Errorf("ensuring firewall: %w", err)
	}
	ctx.State.FirewallID = firewallID
	LogResourceCreated(ctx.Observer, p.Name(), "firewall", cfg.ClusterName+"-fw")

	return p.createServers(ctx)
}

// ensureKeyPair resolves the SSH public key: either from the configured
// private key or by generating a fresh pair next to the config file.
func (p *InfrastructurePhase) ensureKeyPair(ctx *Context) (string, error) {
	if path := ctx.Config.SSH.PrivateKeyPath; path != "" {
		pub, err := keygen.PublicKeyFromPrivate(path)
		if err != nil {
			return "", fmt.Errorf("deriving public key from %s: %w", path, err)
		}
		return pub, nil
	}

	pair, err := keygen.GenerateRSAKeyPair(4096)
	if err != nil {
		return "", fmt.Errorf("generating ssh key pair: %w", err)
	}

	dir := filepath.Dir(config.DefaultConfigPath())
	keyPath := filepath.Join(dir, ctx.Config.ClusterName+"_rsa")
	if err := pair.WritePrivateKey(keyPath); err != nil {
		return "", fmt.Errorf("writing private key: %w", err)
	}

	ctx.State.KeyPairPath = keyPath
	ctx.Config.SSH.PrivateKeyPath = keyPath
	ctx.Observer.Printf("[%s] generated ssh key pair at %s", p.Name(), keyPath)
	return string(pair.PublicKey), nil
}

// createServers provisions every node in parallel and registers the
// resulting handles in shared state.
func (p *InfrastructurePhase) createServers(ctx *Context) error {
	cfg := ctx.Config

	specs := []struct {
		node config.NodeConfig
		role cluster.Role
	}{{cfg.Nodes.Primary, cluster.RolePrimary}}
	for _, n := range cfg.Nodes.Secondaries {
		specs = append(specs, struct {
			node config.NodeConfig
			role cluster.Role
		}{n, cluster.RoleSecondary})
	}

	tasks := make([]async.Task, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		tasks = append(tasks, async.Task{
			Name: spec.node.Name,
			Func: func(taskCtx context.Context) error {
				return p.createServer(taskCtx, ctx, spec.node, spec.role)
			},
		})
	}

	ctx.Observer.Printf("[%s] creating %d servers in parallel...", p.Name(), len(tasks))
	return async.RunParallel(ctx, tasks)
}

func (p *InfrastructurePhase) createServer(runCtx context.Context, ctx *Context, nodeCfg config.NodeConfig, role cluster.Role) error {
	cfg := ctx.Config

	privateIP := net.ParseIP(nodeCfg.PrivateIP)
	if privateIP == nil {
		return fmt.Errorf("node %s: invalid private ip %q", nodeCfg.Name, nodeCfg.PrivateIP)
	}

	var server *hcloudinternal.Server
	err := retry.WithExponentialBackoff(runCtx, func() error {
		createCtx, cancel := context.WithTimeout(runCtx, ctx.Timeouts.ServerCreate)
		defer cancel()

		s, err := ctx.Infra.CreateServer(createCtx, hcloudinternal.ServerCreateOpts{
			Name:       nodeCfg.Name,
			ServerType: cfg.ServerType,
			Image:      cfg.Image,
			Location:   cfg.Location,
			NetworkID:  ctx.State.NetworkID,
			PrivateIP:  privateIP,
			FirewallID: ctx.State.FirewallID,
			SSHKeyID:   ctx.State.SSHKeyID,
			Labels:     serverLabels(cfg.ClusterName, role),
		})
		if err != nil {
			if !hcloudinternal.IsRetryable(err) {
				return retry.Fatal(err)
			}
			return err
		}
		server = s
		return nil
	},
		retry.WithMaxRetries(ctx.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(ctx.Timeouts.RetryInitialDelay),
	)
	if err != nil {
		return fmt.Errorf("creating server %s: %w", nodeCfg.Name, err)
	}

	node := cluster.NewNode(nodeCfg.Name, role, nodeCfg.PrivateIP, server.PublicIP)
	ctx.State.AddNode(node)
	LogResourceCreated(ctx.Observer, p.Name(), "server", nodeCfg.Name)
	return nil
}

func serverLabels(clusterName string, role cluster.Role) map[string]string {
	labels := ClusterLabels(clusterName)
	labels["role"] = string(role)
	return labels
}
