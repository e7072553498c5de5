package provisioning

import (
	"fmt"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/config"
)

// CredentialsPhase mints the join credential on the Ready primary.
// Issuance failure is fatal for the run: no secondary can join without it.
type CredentialsPhase struct{}

// Name implements Phase.
func (p *CredentialsPhase) Name() string { return "credentials" }

// Provision implements Phase.
func (p *CredentialsPhase) Provision(ctx *Context) error {
	cfg := ctx.Config
	node := ctx.State.Node(cfg.Nodes.Primary.Name)
	if node == nil || !node.Ready() {
		return fmt.Errorf("primary node is not ready for credential issuance")
	}

	comm, err := ctx.Connect(node.PublicIP)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", node.Name, err)
	}

	var strategy cluster.IssuerStrategy
	switch cfg.Join.Strategy {
	case config.JoinStrategyFile:
		strategy = cluster.NewFileMintStrategy(comm, cfg.Join.FilePath)
	default:
		strategy = cluster.NewRemoteMintStrategy(comm)
	}

	issuer := cluster.NewIssuer(strategy, cfg.APIEndpoint())
	cred, err := issuer.Issue(ctx)
	if err != nil {
		return err
	}

	ctx.State.Credential = cred
	ctx.Observer.Printf("[%s] issued %s", p.Name(), cred)
	return nil
}
