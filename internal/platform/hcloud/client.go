// Package hcloud provides a wrapper around the Hetzner Cloud API.
package hcloud

import (
	"context"
	"net"
)

// Server describes a provisioned cluster node.
type Server struct {
	ID        int64
	Name      string
	PublicIP  string
	PrivateIP string
}

// InfrastructureManager defines the cloud operations the provisioner
// needs. It abstracts the underlying cloud provider API.
type InfrastructureManager interface {
	// EnsureNetwork creates the private network if it does not exist.
	// It is idempotent: an existing network with the same IP range is
	// returned as-is.
	EnsureNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (int64, error)

	// EnsureSubnet adds the subnet to the network if missing.
	EnsureSubnet(ctx context.Context, networkID int64, ipRange, zone string) error

	// DeleteNetwork deletes the network. Missing networks are not an error.
	DeleteNetwork(ctx context.Context, name string) error

	// EnsureFirewall creates or updates the cluster firewall. The rules
	// admit SSH and the Kubernetes API from anywhere; everything else is
	// left to the private network.
	EnsureFirewall(ctx context.Context, name string, apiPort int, labels map[string]string) (int64, error)

	// DeleteFirewall deletes the firewall. Missing firewalls are not an error.
	DeleteFirewall(ctx context.Context, name string) error

	// EnsureSSHKey uploads the public key if no key with this name exists.
	EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (int64, error)

	// DeleteSSHKey deletes the key. Missing keys are not an error.
	DeleteSSHKey(ctx context.Context, name string) error

	// CreateServer creates a server attached to the network with the
	// given private IP and returns its addresses. It is idempotent: an
	// existing server with this name is returned as-is.
	CreateServer(ctx context.Context, opts ServerCreateOpts) (*Server, error)

	// DeleteServer deletes the server. Missing servers are not an error.
	DeleteServer(ctx context.Context, name string) error

	// GetServersByLabel lists servers carrying the given label selector.
	GetServersByLabel(ctx context.Context, selector string) ([]*Server, error)
}

// ServerCreateOpts describes a server to create.
type ServerCreateOpts struct {
	Name       string
	ServerType string
	Image      string
	Location   string
	NetworkID  int64
	PrivateIP  net.IP
	FirewallID int64
	SSHKeyID   int64
	Labels     map[string]string
}
