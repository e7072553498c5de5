package cluster

import (
	"context"
	"fmt"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// PackageBootstrapper installs the OS-level prerequisites on a node:
// kernel modules, sysctl settings, the container runtime, and the
// Kubernetes packages. The sequence is identical for both roles except
// that only the primary gets kubectl.
type PackageBootstrapper struct {
	runner *StepRunner

	// KubernetesVersion is the minor version line used for the package
	// repository, e.g. "1.31".
	KubernetesVersion string
}

// NewPackageBootstrapper creates a bootstrapper for the given host.
func NewPackageBootstrapper(comm ssh.Communicator, log Logger, host, kubernetesVersion string) *PackageBootstrapper {
	return &PackageBootstrapper{
		runner:            NewStepRunner(comm, log, host),
		KubernetesVersion: kubernetesVersion,
	}
}

// Install runs the package bootstrap sequence for the given role and moves
// the node to PackagesInstalled. A critical failure moves it to Failed.
func (b *PackageBootstrapper) Install(ctx context.Context, node *Node) error {
	if err := b.runner.Run(ctx, b.Steps(node.Role)); err != nil {
		node.Fail(err)
		return fmt.Errorf("package bootstrap on %s: %w", node.Name, err)
	}
	if err := node.Transition(StatePackagesInstalled); err != nil {
		return err
	}
	return nil
}

// Steps returns the ordered package bootstrap sequence for a role.
// Every step is idempotent so a re-run of a partially bootstrapped node
// converges instead of failing.
func (b *PackageBootstrapper) Steps(role Role) []Step {
	repo := fmt.Sprintf("https://pkgs.k8s.io/core:/stable:/v%s/deb", b.KubernetesVersion)

	kubePackages := "kubelet kubeadm"
	if role == RolePrimary {
		kubePackages += " kubectl"
	}

	return []Step{
		{
			Name: "load kernel modules",
			Command: `modprobe overlay && modprobe br_netfilter && ` +
				`printf 'overlay\nbr_netfilter\n' > /etc/modules-load.d/kubernetes.conf`,
			Critical: true,
		},
		{
			Name: "configure sysctl",
			Command: `printf 'net.bridge.bridge-nf-call-iptables = 1\n` +
				`net.bridge.bridge-nf-call-ip6tables = 1\n` +
				`net.ipv4.ip_forward = 1\n' > /etc/sysctl.d/99-kubernetes.conf && sysctl --system`,
			Critical: true,
		},
		{
			Name:     "disable swap",
			Command:  `swapoff -a && sed -i '/ swap / s/^\(.*\)$/#\1/' /etc/fstab`,
			Critical: true,
		},
		{
			Name: "install container runtime",
			Command: `apt-get update -q && DEBIAN_FRONTEND=noninteractive apt-get install -yq containerd && ` +
				`mkdir -p /etc/containerd && containerd config default > /etc/containerd/config.toml && ` +
				`sed -i 's/SystemdCgroup = false/SystemdCgroup = true/' /etc/containerd/config.toml && ` +
				`systemctl enable containerd && systemctl restart containerd`,
			Critical: true,
		},
		{
			Name: "register kubernetes repository",
			Command: `DEBIAN_FRONTEND=noninteractive apt-get install -yq apt-transport-https ca-certificates curl gpg && ` +
				`mkdir -p /etc/apt/keyrings && ` +
				fmt.Sprintf(`curl -fsSL %s/Release.key | gpg --dearmor --yes -o /etc/apt/keyrings/kubernetes-apt-keyring.gpg && `, repo) +
				fmt.Sprintf(`echo 'deb [signed-by=/etc/apt/keyrings/kubernetes-apt-keyring.gpg] %s/ /' > /etc/apt/sources.list.d/kubernetes.list`, repo),
			Critical: true,
		},
		{
			Name: "install kubernetes packages",
			Command: fmt.Sprintf(`apt-get update -q && DEBIAN_FRONTEND=noninteractive apt-get install -yq %s && apt-mark hold %s`,
				kubePackages, kubePackages),
			Critical: true,
		},
		{
			Name:     "enable kubelet",
			Command:  `systemctl enable kubelet`,
			Critical: true,
		},
		{
			// Warms the image cache so init/join spend less time pulling;
			// bootstrap works without it.
			Name:     "preload control plane images",
			Command:  `kubeadm config images pull`,
			Critical: false,
		},
	}
}
