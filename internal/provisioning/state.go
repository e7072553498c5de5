package provisioning

import (
	"sync"

	"github.com/kubeseed/kubeseed/internal/cluster"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Infrastructure results
	NetworkID  int64
	FirewallID int64
	SSHKeyID   int64

	// KeyPairPath is where the generated private key was written.
	// Empty when the operator supplied their own key.
	KeyPairPath string

	// Credential is the join credential minted on the primary.
	Credential *cluster.JoinCredential

	mu sync.Mutex
	// nodes maps node name to its lifecycle handle.
	nodes map[string]*cluster.Node
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		nodes: make(map[string]*cluster.Node),
	}
}

// AddNode registers a node handle.
// Safe for concurrent use by parallel server creation.
func (s *State) AddNode(node *cluster.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.Name] = node
}

// Node returns the handle for a node name, or nil.
func (s *State) Node(name string) *cluster.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes[name]
}

// Nodes returns all registered node handles.
func (s *State) Nodes() []*cluster.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*cluster.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}
