package provisioning

import (
	"context"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/config"
	hcloudinternal "github.com/kubeseed/kubeseed/internal/platform/hcloud"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Infra    hcloudinternal.InfrastructureManager
	Connect  ConnectFunc
	Fetcher  cluster.ObjectFetcher
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	infra hcloudinternal.InfrastructureManager,
	connect ConnectFunc,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Infra:    infra,
		Connect:  connect,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}
