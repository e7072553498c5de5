package cluster

import (
	"fmt"
	"sync"
)

// Role identifies a node's place in the cluster.
type Role string

const (
	// RolePrimary runs the control plane and API server.
	RolePrimary Role = "primary"
	// RoleSecondary joins the existing cluster's data plane.
	RoleSecondary Role = "secondary"
)

// State is a node's position in the bootstrap state machine.
type State string

const (
	StateUnprovisioned      State = "Unprovisioned"
	StatePackagesInstalled  State = "PackagesInstalled"
	StateClusterInitialized State = "ClusterInitialized"
	StateOverlayApplied     State = "NetworkOverlayApplied"
	StateWaitingForPrimary  State = "WaitingForPrimary"
	StateJoined             State = "Joined"
	StateReady              State = "Ready"
	StateFailed             State = "Failed"
)

// transitions maps each state to the states reachable from it.
// StateFailed is reachable from every non-terminal state via Fail.
var transitions = map[State][]State{
	StateUnprovisioned:      {StatePackagesInstalled},
	StatePackagesInstalled:  {StateClusterInitialized, StateWaitingForPrimary},
	StateClusterInitialized: {StateOverlayApplied},
	StateOverlayApplied:     {StateReady},
	StateWaitingForPrimary:  {StateJoined},
	StateJoined:             {StateReady},
	StateReady:              {},
	StateFailed:             {},
}

// Node is a cluster member being bootstrapped.
// State mutations are serialized by a single bootstrap goroutine per node;
// the mutex only guards the read side used by the run summary.
type Node struct {
	Name      string
	Role      Role
	PrivateIP string
	// PublicIP is the ephemeral address used for remote access during
	// bootstrap; cluster traffic uses the private address.
	PublicIP string

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewNode creates a node in the Unprovisioned state.
func NewNode(name string, role Role, privateIP, publicIP string) *Node {
	return &Node{
		Name:      name,
		Role:      role,
		PrivateIP: privateIP,
		PublicIP:  publicIP,
		state:     StateUnprovisioned,
	}
}

// Transition moves the node to the given state, rejecting moves the state
// machine does not allow.
func (n *Node) Transition(to State) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, allowed := range transitions[n.state] {
		if allowed == to {
			n.state = to
			return nil
		}
	}
	return fmt.Errorf("node %s: invalid transition %s -> %s", n.Name, n.state, to)
}

// Fail moves the node to the terminal Failed state and records the error.
// Failing an already-terminal node keeps the first recorded error.
func (n *Node) Fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateFailed || n.state == StateReady {
		return
	}
	n.state = StateFailed
	n.lastErr = err
}

// State returns the node's current state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// LastError returns the error recorded when the node failed, if any.
func (n *Node) LastError() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastErr
}

// Ready reports whether the node reached the terminal Ready state.
func (n *Node) Ready() bool {
	return n.State() == StateReady
}
