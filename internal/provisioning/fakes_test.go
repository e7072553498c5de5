package provisioning

import (
	"context"
	"fmt"
	"sync"

	hcloudinternal "github.com/kubeseed/kubeseed/internal/platform/hcloud"
	sshpkg "github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// fakeInfra is an in-memory InfrastructureManager.
type fakeInfra struct {
	mu       sync.Mutex
	networks map[string]int64
	servers  map[string]*hcloudinternal.Server
	deleted  []string
	nextID   int64

	createServerErr error
}

func newFakeInfra() *fakeInfra {
	return &fakeInfra{
		networks: make(map[string]int64),
		servers:  make(map[string]*hcloudinternal.Server),
		nextID:   100,
	}
}

func (f *fakeInfra) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeInfra) EnsureNetwork(_ context.Context, name, _ string, _ map[string]string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.networks[name]; ok {
		return id, nil
	}
	id := f.id()
	f.networks[name] = id
	return id, nil
}

func (f *fakeInfra) EnsureSubnet(context.Context, int64, string, string) error { return nil }

func (f *fakeInfra) DeleteNetwork(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "network:"+name)
	return nil
}

func (f *fakeInfra) EnsureFirewall(_ context.Context, _ string, _ int, _ map[string]string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id(), nil
}

func (f *fakeInfra) DeleteFirewall(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "firewall:"+name)
	return nil
}

func (f *fakeInfra) EnsureSSHKey(_ context.Context, _ string, _ string, _ map[string]string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id(), nil
}

func (f *fakeInfra) DeleteSSHKey(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "sshkey:"+name)
	return nil
}

func (f *fakeInfra) CreateServer(_ context.Context, opts hcloudinternal.ServerCreateOpts) (*hcloudinternal.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createServerErr != nil {
		return nil, f.createServerErr
	}
	if s, ok := f.servers[opts.Name]; ok {
		return s, nil
	}
	s := &hcloudinternal.Server{
		ID:        f.id(),
		Name:      opts.Name,
		PublicIP:  fmt.Sprintf("192.0.2.%d", len(f.servers)+1),
		PrivateIP: opts.PrivateIP.String(),
	}
	f.servers[opts.Name] = s
	return s, nil
}

func (f *fakeInfra) DeleteServer(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "server:"+name)
	delete(f.servers, name)
	return nil
}

func (f *fakeInfra) GetServersByLabel(_ context.Context, _ string) ([]*hcloudinternal.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*hcloudinternal.Server, 0, len(f.servers))
	for _, s := range f.servers {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeInfra) deletions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// fakeComm is a scripted Communicator. The handler decides the outcome
// per command; a nil handler succeeds with empty output.
type fakeComm struct {
	mu       sync.Mutex
	host     string
	commands []string
	uploads  map[string][]byte
	handler  func(host, command string) (string, error)
}

func (f *fakeComm) Execute(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	if f.handler == nil {
		return "", nil
	}
	return f.handler(f.host, command)
}

func (f *fakeComm) Upload(_ context.Context, content []byte, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[remotePath] = append([]byte(nil), content...)
	return nil
}

func (f *fakeComm) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// fakeFleet hands out one fakeComm per host and remembers them.
type fakeFleet struct {
	mu      sync.Mutex
	comms   map[string]*fakeComm
	handler func(host, command string) (string, error)
}

func newFakeFleet(handler func(host, command string) (string, error)) *fakeFleet {
	return &fakeFleet{
		comms:   make(map[string]*fakeComm),
		handler: handler,
	}
}

func (f *fakeFleet) connect(host string) (sshpkg.Communicator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.comms[host]; ok {
		return c, nil
	}
	c := &fakeComm{
		host:    host,
		uploads: make(map[string][]byte),
		handler: f.handler,
	}
	f.comms[host] = c
	return c, nil
}

func (f *fakeFleet) comm(host string) *fakeComm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comms[host]
}

// allCommands returns every command executed across the fleet.
func (f *fakeFleet) allCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.comms {
		out = append(out, c.executed()...)
	}
	return out
}

// quietObserver drops all output.
type quietObserver struct{}

func (quietObserver) Printf(string, ...interface{}) {}
func (quietObserver) Event(Event)                   {}
func (quietObserver) Progress(string, int, int)     {}
