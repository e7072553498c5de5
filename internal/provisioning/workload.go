package provisioning

import (
	"fmt"

	"github.com/kubeseed/kubeseed/internal/cluster"
)

// WorkloadPhase applies the configured workload manifest against the
// ready cluster. A run without a workload section skips this phase.
type WorkloadPhase struct{}

// Name implements Phase.
func (p *WorkloadPhase) Name() string { return "workload" }

// Provision implements Phase.
func (p *WorkloadPhase) Provision(ctx *Context) error {
	cfg := ctx.Config
	if cfg.Workload == nil {
		ctx.Observer.Printf("[%s] no workload configured, skipping", p.Name())
		return nil
	}

	node := ctx.State.Node(cfg.Nodes.Primary.Name)
	if node == nil || !node.Ready() {
		return fmt.Errorf("primary node is not ready for workload deployment")
	}

	comm, err := ctx.Connect(node.PublicIP)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", node.Name, err)
	}

	source := cluster.ManifestSource{}
	if cfg.Workload.Git != nil {
		source.Git = &cluster.GitSource{
			RepoURL: cfg.Workload.Git.Repo,
			Path:    cfg.Workload.Git.Path,
		}
	}
	if cfg.Workload.Object != nil {
		source.Object = &cluster.ObjectSource{
			Bucket: cfg.Workload.Object.Bucket,
			Key:    cfg.Workload.Object.Key,
		}
	}

	deployer := cluster.NewManifestDeployer(comm, ctx.Observer, ctx.Fetcher, cluster.FailurePolicy(cfg.Workload.OnFailure))
	if err := deployer.Deploy(ctx, source); err != nil {
		return err
	}
	return nil
}
