package cluster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
	"github.com/kubeseed/kubeseed/internal/util/retry"
)

// InitializerConfig configures control-plane initialization.
type InitializerConfig struct {
	// AdvertiseAddress is the primary's private address the API server
	// advertises to the cluster.
	AdvertiseAddress string
	// PodNetworkCIDR is handed to kubeadm for the overlay.
	PodNetworkCIDR string
	// IgnorePreflightErrors selects the ignore-all preflight policy.
	// When false, preflight failures abort the attempt.
	IgnorePreflightErrors bool
	// OverlayManifestURL is the network overlay applied after init.
	OverlayManifestURL string

	// Attempts and Delay shape the init retry policy.
	Attempts int
	Delay    time.Duration

	// ReadyPollInterval and ReadyTimeout bound the node-ready wait.
	ReadyPollInterval time.Duration
	ReadyTimeout      time.Duration
}

// Initializer drives the primary node through kubeadm init, overlay
// installation, and the node-ready wait.
type Initializer struct {
	comm ssh.Communicator
	log  Logger
	cfg  InitializerConfig
}

// NewInitializer creates an initializer for the primary node.
func NewInitializer(comm ssh.Communicator, log Logger, cfg InitializerConfig) *Initializer {
	return &Initializer{comm: comm, log: log, cfg: cfg}
}

// Init initializes the control plane on node with bounded retry.
// Before each retry the kubelet is restarted and any half-initialized state
// is reset, so every attempt starts clean. On success the node has admin
// credentials installed, the overlay applied, and reports Ready.
func (i *Initializer) Init(ctx context.Context, node *Node) error {
	cmd := i.initCommand()

	i.log.Printf("[%s] initializing control plane", node.Name)

	err := retry.WithFixedDelay(ctx, func() error {
		if _, err := i.comm.Execute(ctx, cmd); err != nil {
			if IsTimeout(err) {
				return retry.Fatal(err)
			}
			return &RemoteError{Op: "kubeadm init", Err: err}
		}
		return nil
	}, i.cfg.Attempts, i.cfg.Delay, retry.WithRecovery(func(attempt int, err error) error {
		i.log.Printf("[%s] init attempt %d failed, resetting before retry: %v", node.Name, attempt, err)
		return i.resetForRetry(ctx)
	}))
	if err != nil {
		wrapped := fmt.Errorf("control plane initialization on %s: %w", node.Name, err)
		node.Fail(wrapped)
		return wrapped
	}

	if err := node.Transition(StateClusterInitialized); err != nil {
		return err
	}

	if _, err := i.comm.Execute(ctx, "mkdir -p /root/.kube && cp -f /etc/kubernetes/admin.conf /root/.kube/config"); err != nil {
		wrapped := fmt.Errorf("installing admin kubeconfig on %s: %w", node.Name, err)
		node.Fail(wrapped)
		return wrapped
	}

	if err := i.applyOverlay(ctx, node); err != nil {
		node.Fail(err)
		return err
	}

	if err := i.waitNodeReady(ctx, node); err != nil {
		node.Fail(err)
		return err
	}

	return node.Transition(StateReady)
}

func (i *Initializer) initCommand() string {
	cmd := fmt.Sprintf("kubeadm init --apiserver-advertise-address=%s --pod-network-cidr=%s",
		i.cfg.AdvertiseAddress, i.cfg.PodNetworkCIDR)
	if i.cfg.IgnorePreflightErrors {
		cmd += " --ignore-preflight-errors=all"
	}
	return cmd
}

// resetForRetry clears transient state between init attempts.
func (i *Initializer) resetForRetry(ctx context.Context) error {
	if _, err := i.comm.Execute(ctx, "kubeadm reset -f >/dev/null 2>&1; systemctl restart kubelet"); err != nil {
		return fmt.Errorf("resetting node state: %w", err)
	}
	return nil
}

func (i *Initializer) applyOverlay(ctx context.Context, node *Node) error {
	i.log.Printf("[%s] applying network overlay", node.Name)

	cmd := fmt.Sprintf("kubectl --kubeconfig /etc/kubernetes/admin.conf apply -f %s", i.cfg.OverlayManifestURL)
	if _, err := i.comm.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("applying network overlay on %s: %w", node.Name, err)
	}
	return node.Transition(StateOverlayApplied)
}

// waitNodeReady polls the primary's own node status until it reports Ready.
func (i *Initializer) waitNodeReady(ctx context.Context, node *Node) error {
	i.log.Printf("[%s] waiting for node to report Ready", node.Name)

	ticker := time.NewTicker(i.cfg.ReadyPollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, i.cfg.ReadyTimeout)
	defer cancel()

	cmd := "kubectl --kubeconfig /etc/kubernetes/admin.conf get nodes --no-headers"

	for {
		output, err := i.comm.Execute(ctx, cmd)
		if err == nil && nodeReported(output, node.Name) {
			return nil
		}

		select {
		case <-ctx.Done():
			return &TimeoutError{Stage: "node-ready wait on " + node.Name, Bound: i.cfg.ReadyTimeout, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// nodeReported reports whether the named node shows a Ready status in
// kubectl's no-headers node listing.
func nodeReported(output, nodeName string) bool {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == nodeName && fields[1] == "Ready" {
			return true
		}
	}
	return false
}
