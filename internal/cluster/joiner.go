package cluster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
	"github.com/kubeseed/kubeseed/internal/util/netutil"
	"github.com/kubeseed/kubeseed/internal/util/retry"
)

// JoinerConfig configures a secondary node's join sequence.
type JoinerConfig struct {
	// IgnorePreflightErrors selects the ignore-all preflight policy.
	IgnorePreflightErrors bool

	// Attempts and Delay shape the join retry policy.
	Attempts int
	Delay    time.Duration

	// ProbeInterval and APIWaitTimeout bound the wait for the primary's
	// API port before the first join attempt.
	ProbeInterval  time.Duration
	APIWaitTimeout time.Duration
}

// Joiner admits a secondary node into an initialized cluster.
type Joiner struct {
	comm ssh.Communicator
	log  Logger
	cfg  JoinerConfig
}

// NewJoiner creates a joiner for one secondary node.
func NewJoiner(comm ssh.Communicator, log Logger, cfg JoinerConfig) *Joiner {
	return &Joiner{comm: comm, log: log, cfg: cfg}
}

// Join blocks until the primary's API endpoint accepts connections, then
// executes the join with bounded retry, restarting the kubelet between
// attempts. The credential must already be issued; the pipeline guarantees
// the primary is Ready before any Join starts.
func (j *Joiner) Join(ctx context.Context, node *Node, cred *JoinCredential) error {
	if err := node.Transition(StateWaitingForPrimary); err != nil {
		return err
	}

	if err := j.waitForAPI(ctx, node, cred.Endpoint); err != nil {
		node.Fail(err)
		return err
	}

	cmd := cred.JoinCommand(j.cfg.IgnorePreflightErrors)

	j.log.Printf("[%s] joining cluster at %s", node.Name, cred.Endpoint)

	err := retry.WithFixedDelay(ctx, func() error {
		if _, err := j.comm.Execute(ctx, cmd); err != nil {
			if IsTimeout(err) {
				return retry.Fatal(err)
			}
			return &RemoteError{Op: "kubeadm join", Err: err}
		}
		return nil
	}, j.cfg.Attempts, j.cfg.Delay, retry.WithRecovery(func(attempt int, err error) error {
		j.log.Printf("[%s] join attempt %d failed, resetting before retry: %v", node.Name, attempt, err)
		if _, rerr := j.comm.Execute(ctx, "kubeadm reset -f >/dev/null 2>&1; systemctl restart kubelet"); rerr != nil {
			return fmt.Errorf("resetting node state: %w", rerr)
		}
		return nil
	}))
	if err != nil {
		wrapped := fmt.Errorf("join on %s: %w", node.Name, err)
		node.Fail(wrapped)
		return wrapped
	}

	if err := node.Transition(StateJoined); err != nil {
		return err
	}
	return node.Transition(StateReady)
}

// waitForAPI probes the primary's API port until it accepts a connection.
// Exhausting the bound is a TimeoutError, not a command failure.
func (j *Joiner) waitForAPI(ctx context.Context, node *Node, endpoint string) error {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return fmt.Errorf("invalid API endpoint %q: %w", endpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid API port in %q: %w", endpoint, err)
	}

	j.log.Printf("[%s] waiting for API endpoint %s", node.Name, endpoint)

	if err := netutil.WaitForPort(ctx, host, port, j.cfg.ProbeInterval, j.cfg.APIWaitTimeout); err != nil {
		if errors.Is(err, netutil.ErrWaitTimeout) {
			return &TimeoutError{Stage: "API wait on " + node.Name, Bound: j.cfg.APIWaitTimeout, Err: err}
		}
		return err
	}
	return nil
}
