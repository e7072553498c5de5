package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// RealClient implements InfrastructureManager using the Hetzner Cloud API.
type RealClient struct {
	client *hcloud.Client
}

// NewRealClient creates a new RealClient.
func NewRealClient(token string) *RealClient {
	return &RealClient{
		client: hcloud.NewClient(hcloud.WithToken(token)),
	}
}

// --- Network ---

// EnsureNetwork creates the private network if it does not exist.
func (c *RealClient) EnsureNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (int64, error) {
	network, _, err := c.client.Network.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get network: %w", err)
	}

	if network != nil {
		if network.IPRange.String() != ipRange {
			return 0, fmt.Errorf("network %s exists but with different IP range %s (expected %s)", name, network.IPRange.String(), ipRange)
		}
		return network.ID, nil
	}

	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return 0, fmt.Errorf("invalid ip range: %w", err)
	}

	network, _, err = c.client.Network.Create(ctx, hcloud.NetworkCreateOpts{
		Name:    name,
		IPRange: ipNet,
		Labels:  labels,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create network: %w", err)
	}

	return network.ID, nil
}

// EnsureSubnet adds the subnet to the network if missing.
func (c *RealClient) EnsureSubnet(ctx context.Context, networkID int64, ipRange, zone string) error {
	network, _, err := c.client.Network.GetByID(ctx, networkID)
	if err != nil {
		return fmt.Errorf("failed to get network: %w", err)
	}
	if network == nil {
		return fmt.Errorf("network %d not found", networkID)
	}

	for _, subnet := range network.Subnets {
		if subnet.IPRange.String() == ipRange {
			return nil
		}
	}

	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return fmt.Errorf("invalid subnet ip range: %w", err)
	}

	action, _, err := c.client.Network.AddSubnet(ctx, network, hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: hcloud.NetworkZone(zone),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add subnet: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for subnet creation: %w", err)
	}

	return nil
}

// DeleteNetwork deletes the network by name.
func (c *RealClient) DeleteNetwork(ctx context.Context, name string) error {
	network, _, err := c.client.Network.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get network: %w", err)
	}
	if network == nil {
		return nil
	}
	_, err = c.client.Network.Delete(ctx, network)
	return err
}

// --- Firewall ---

// EnsureFirewall creates or updates the cluster firewall.
func (c *RealClient) EnsureFirewall(ctx context.Context, name string, apiPort int, labels map[string]string) (int64, error) {
	rules := firewallRules(apiPort)

	fw, _, err := c.client.Firewall.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get firewall: %w", err)
	}

	if fw != nil {
		actions, _, err := c.client.Firewall.SetRules(ctx, fw, hcloud.FirewallSetRulesOpts{Rules: rules})
		if err != nil {
			return 0, fmt.Errorf("failed to set firewall rules: %w", err)
		}
		if err := c.client.Action.WaitFor(ctx, actions...); err != nil {
			return 0, fmt.Errorf("failed to wait for firewall rules update: %w", err)
		}
		return fw.ID, nil
	}

	res, _, err := c.client.Firewall.Create(ctx, hcloud.FirewallCreateOpts{
		Name:   name,
		Rules:  rules,
		Labels: labels,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create firewall: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, res.Actions...); err != nil {
		return 0, fmt.Errorf("failed to wait for firewall creation: %w", err)
	}

	return res.Firewall.ID, nil
}

// DeleteFirewall deletes the firewall by name.
func (c *RealClient) DeleteFirewall(ctx context.Context, name string) error {
	fw, _, err := c.client.Firewall.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get firewall: %w", err)
	}
	if fw == nil {
		return nil
	}
	_, err = c.client.Firewall.Delete(ctx, fw)
	return err
}

// firewallRules admits SSH and the API server from anywhere. Node to
// node traffic rides the private network and is not filtered here.
func firewallRules(apiPort int) []hcloud.FirewallRule {
	anywhere := []net.IPNet{
		{IP: net.IPv4zero, Mask: net.CIDRMask(0, 32)},
		{IP: net.IPv6zero, Mask: net.CIDRMask(0, 128)},
	}
	ssh := "22"
	api := fmt.Sprintf("%d", apiPort)
	icmp := hcloud.FirewallRuleProtocolICMP
	tcp := hcloud.FirewallRuleProtocolTCP

	return []hcloud.FirewallRule{
		{
			Direction: hcloud.FirewallRuleDirectionIn,
			Protocol:  icmp,
			SourceIPs: anywhere,
		},
		{
			Direction: hcloud.FirewallRuleDirectionIn,
			Protocol:  tcp,
			Port:      &ssh,
			SourceIPs: anywhere,
		},
		{
			Direction: hcloud.FirewallRuleDirectionIn,
			Protocol:  tcp,
			Port:      &api,
			SourceIPs: anywhere,
		},
	}
}

// --- SSH keys ---

// EnsureSSHKey uploads the public key if no key with this name exists.
func (c *RealClient) EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (int64, error) {
	key, _, err := c.client.SSHKey.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get ssh key: %w", err)
	}
	if key != nil {
		return key.ID, nil
	}

	key, _, err = c.client.SSHKey.Create(ctx, hcloud.SSHKeyCreateOpts{
		Name:      name,
		PublicKey: publicKey,
		Labels:    labels,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create ssh key: %w", err)
	}
	return key.ID, nil
}

// DeleteSSHKey deletes the key by name.
func (c *RealClient) DeleteSSHKey(ctx context.Context, name string) error {
	key, _, err := c.client.SSHKey.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get ssh key: %w", err)
	}
	if key == nil {
		return nil
	}
	_, err = c.client.SSHKey.Delete(ctx, key)
	return err
}

// --- Servers ---

// CreateServer creates a server attached to the private network.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (*Server, error) {
	existing, _, err := c.client.Server.Get(ctx, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	if existing != nil {
		return serverFromAPI(existing), nil
	}

	serverType, _, err := c.client.ServerType.Get(ctx, opts.ServerType)
	if err != nil {
		return nil, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return nil, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	image, _, err := c.client.Image.GetForArchitecture(ctx, opts.Image, serverType.Architecture)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("image not found: %s", opts.Image)
	}

	location, _, err := c.client.Location.Get(ctx, opts.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", opts.Location, err)
	}
	if location == nil {
		return nil, fmt.Errorf("location not found: %s", opts.Location)
	}

	createOpts := hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverType,
		Image:      image,
		Location:   location,
		Labels:     opts.Labels,
		Networks:   []*hcloud.Network{{ID: opts.NetworkID}},
		Firewalls: []*hcloud.ServerCreateFirewall{
			{Firewall: hcloud.Firewall{ID: opts.FirewallID}},
		},
		SSHKeys: []*hcloud.SSHKey{{ID: opts.SSHKeyID}},
	}

	result, _, err := c.client.Server.Create(ctx, createOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
		return nil, fmt.Errorf("failed to wait for server creation: %w", err)
	}
	if err := c.client.Action.WaitFor(ctx, result.NextActions...); err != nil {
		return nil, fmt.Errorf("failed to wait for server setup: %w", err)
	}

	// Attaching with an explicit private IP happens after creation so
	// the address is deterministic rather than DHCP-assigned.
	server, _, err := c.client.Server.GetByID(ctx, result.Server.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh server: %w", err)
	}
	if err := c.ensurePrivateIP(ctx, server, opts.NetworkID, opts.PrivateIP); err != nil {
		return nil, err
	}

	server, _, err = c.client.Server.GetByID(ctx, result.Server.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh server: %w", err)
	}
	return serverFromAPI(server), nil
}

// ensurePrivateIP reattaches the server to the network with the desired
// private address when the DHCP-assigned one differs.
func (c *RealClient) ensurePrivateIP(ctx context.Context, server *hcloud.Server, networkID int64, want net.IP) error {
	if want == nil {
		return nil
	}

	for _, pn := range server.PrivateNet {
		if pn.Network.ID != networkID {
			continue
		}
		if pn.IP.Equal(want) {
			return nil
		}
		action, _, err := c.client.Server.DetachFromNetwork(ctx, server, hcloud.ServerDetachFromNetworkOpts{
			Network: &hcloud.Network{ID: networkID},
		})
		if err != nil {
			return fmt.Errorf("failed to detach server from network: %w", err)
		}
		if err := c.client.Action.WaitFor(ctx, action); err != nil {
			return fmt.Errorf("failed to wait for network detach: %w", err)
		}
	}

	action, _, err := c.client.Server.AttachToNetwork(ctx, server, hcloud.ServerAttachToNetworkOpts{
		Network: &hcloud.Network{ID: networkID},
		IP:      want,
	})
	if err != nil {
		return fmt.Errorf("failed to attach server to network: %w", err)
	}
	if err := c.client.Action.WaitFor(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for network attach: %w", err)
	}
	return nil
}

// DeleteServer deletes the server by name.
func (c *RealClient) DeleteServer(ctx context.Context, name string) error {
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get server: %w", err)
	}
	if server == nil {
		return nil
	}

	result, _, err := c.client.Server.DeleteWithResult(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return c.client.Action.WaitFor(ctx, result.Action)
}

// GetServersByLabel lists servers carrying the given label selector.
func (c *RealClient) GetServersByLabel(ctx context.Context, selector string) ([]*Server, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	out := make([]*Server, 0, len(servers))
	for _, s := range servers {
		out = append(out, serverFromAPI(s))
	}
	return out, nil
}

func serverFromAPI(s *hcloud.Server) *Server {
	out := &Server{
		ID:   s.ID,
		Name: s.Name,
	}
	if s.PublicNet.IPv4.IP != nil {
		out.PublicIP = s.PublicNet.IPv4.IP.String()
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		out.PrivateIP = s.PrivateNet[0].IP.String()
	}
	return out
}
