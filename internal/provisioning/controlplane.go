package provisioning

import (
	"fmt"

	"github.com/kubeseed/kubeseed/internal/cluster"
)

// ControlPlanePhase initializes the control plane on the primary node:
// kubeadm init with bounded retry, the network overlay, and the wait for
// the node to report Ready. Secondaries depend on this phase completing.
type ControlPlanePhase struct{}

// Name implements Phase.
func (p *ControlPlanePhase) Name() string { return "controlplane" }

// Provision implements Phase.
func (p *ControlPlanePhase) Provision(ctx *Context) error {
	cfg := ctx.Config
	node := ctx.State.Node(cfg.Nodes.Primary.Name)
	if node == nil {
		return fmt.Errorf("primary node %s not provisioned", cfg.Nodes.Primary.Name)
	}

	comm, err := ctx.Connect(node.PublicIP)
	if err != nil {
		node.Fail(err)
		return fmt.Errorf("connecting to %s: %w", node.Name, err)
	}

	initializer := cluster.NewInitializer(comm, ctx.Observer, cluster.InitializerConfig{
		AdvertiseAddress:      node.PrivateIP,
		PodNetworkCIDR:        cfg.Kubernetes.PodCIDR,
		IgnorePreflightErrors: cfg.IgnorePreflight(),
		OverlayManifestURL:    cfg.Kubernetes.OverlayManifest,
		Attempts:              cfg.Retry.Attempts,
		Delay:                 cfg.Retry.Delay.Std(),
		ReadyPollInterval:     ctx.Timeouts.ReadyPollInterval,
		ReadyTimeout:          ctx.Timeouts.NodeReady,
	})

	if err := initializer.Init(ctx, node); err != nil {
		return err
	}

	LogNodeState(ctx.Observer, p.Name(), node.Name, string(node.State()))
	return nil
}
