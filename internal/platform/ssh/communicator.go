package ssh

import (
	"context"
)

// Communicator defines the interface for executing commands on a remote host.
type Communicator interface {
	// Execute runs a command on the remote host and returns the combined
	// output. It handles retries and connection establishment and is bounded
	// by the client's session timeout.
	Execute(ctx context.Context, command string) (string, error)
	// Upload writes content to a file on the remote host.
	Upload(ctx context.Context, content []byte, remotePath string) error
}
