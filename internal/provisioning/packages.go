package provisioning

import (
	"context"
	"fmt"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/util/async"
)

// PackagesPhase installs the container runtime and Kubernetes packages
// on every node in parallel. Package installation has no cross-node
// dependencies, so all nodes proceed concurrently.
type PackagesPhase struct{}

// Name implements Phase.
func (p *PackagesPhase) Name() string { return "packages" }

// Provision implements Phase.
func (p *PackagesPhase) Provision(ctx *Context) error {
	nodes := ctx.State.Nodes()
	if len(nodes) == 0 {
		return fmt.Errorf("no nodes provisioned")
	}

	tasks := make([]async.Task, 0, len(nodes))
	for _, node := range nodes {
		node := node
		tasks = append(tasks, async.Task{
			Name: node.Name,
			Func: func(taskCtx context.Context) error {
				return p.install(taskCtx, ctx, node)
			},
		})
	}

	ctx.Observer.Printf("[%s] bootstrapping packages on %d nodes in parallel...", p.Name(), len(tasks))

	// All nodes finish (or fail) independently; the first error is
	// reported but does not cancel the siblings.
	results := async.RunParallelAll(ctx, tasks)
	for _, node := range nodes {
		if err := results[node.Name]; err != nil {
			return err
		}
		LogNodeState(ctx.Observer, p.Name(), node.Name, string(node.State()))
	}
	return nil
}

func (p *PackagesPhase) install(runCtx context.Context, ctx *Context, node *cluster.Node) error {
	comm, err := ctx.Connect(node.PublicIP)
	if err != nil {
		node.Fail(err)
		return fmt.Errorf("connecting to %s: %w", node.Name, err)
	}

	bootstrapper := cluster.NewPackageBootstrapper(comm, ctx.Observer, node.Name, ctx.Config.Kubernetes.Version)
	return bootstrapper.Install(runCtx, node)
}
