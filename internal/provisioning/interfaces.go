package provisioning

import (
	sshpkg "github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the minimal logging surface phases need.
type Logger interface {
	Printf(format string, v ...interface{})
}

// ConnectFunc opens a Communicator to a node's public address.
// Phases dial through this so tests can substitute fakes.
type ConnectFunc func(host string) (sshpkg.Communicator, error)
