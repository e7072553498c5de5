package provisioning

import (
	"context"
	"fmt"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/util/async"
)

// JoinPhase admits every secondary into the cluster in parallel. Each
// joiner waits for the primary's API port before its first attempt. The
// credential is wiped once the last joiner is done with it.
type JoinPhase struct{}

// Name implements Phase.
func (p *JoinPhase) Name() string { return "join" }

// Provision implements Phase.
func (p *JoinPhase) Provision(ctx *Context) error {
	cfg := ctx.Config
	cred := ctx.State.Credential
	if cred == nil {
		return fmt.Errorf("no join credential issued")
	}
	defer cred.Wipe()

	tasks := make([]async.Task, 0, len(cfg.Nodes.Secondaries))
	for _, nodeCfg := range cfg.Nodes.Secondaries {
		node := ctx.State.Node(nodeCfg.Name)
		if node == nil {
			return fmt.Errorf("secondary node %s not provisioned", nodeCfg.Name)
		}
		tasks = append(tasks, async.Task{
			Name: node.Name,
			Func: func(taskCtx context.Context) error {
				return p.join(taskCtx, ctx, node, cred)
			},
		})
	}

	ctx.Observer.Printf("[%s] joining %d secondaries in parallel...", p.Name(), len(tasks))

	results := async.RunParallelAll(ctx, tasks)
	for _, nodeCfg := range cfg.Nodes.Secondaries {
		node := ctx.State.Node(nodeCfg.Name)
		if err := results[nodeCfg.Name]; err != nil {
			return err
		}
		LogNodeState(ctx.Observer, p.Name(), node.Name, string(node.State()))
	}
	return nil
}

func (p *JoinPhase) join(runCtx context.Context, ctx *Context, node *cluster.Node, cred *cluster.JoinCredential) error {
	comm, err := ctx.Connect(node.PublicIP)
	if err != nil {
		node.Fail(err)
		return fmt.Errorf("connecting to %s: %w", node.Name, err)
	}

	joiner := cluster.NewJoiner(comm, ctx.Observer, cluster.JoinerConfig{
		IgnorePreflightErrors: ctx.Config.IgnorePreflight(),
		Attempts:              ctx.Config.Retry.Attempts,
		Delay:                 ctx.Config.Retry.Delay.Std(),
		ProbeInterval:         ctx.Timeouts.APIProbeInterval,
		APIWaitTimeout:        ctx.Timeouts.APIWait,
	})
	return joiner.Join(runCtx, node, cred)
}
