// Package netutil provides network utility functions for port checking.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrWaitTimeout is returned when a port does not open within the bound.
// Callers use it to distinguish an exhausted wait from a refused command.
var ErrWaitTimeout = errors.New("timeout waiting for port")

const dialTimeout = 2 * time.Second

// WaitForPort waits for a TCP port to be open on the target host.
// It probes on the given interval until the port accepts a connection or the
// timeout is reached. The wait is always bounded; a nil result means the
// port accepted at least one connection.
func WaitForPort(ctx context.Context, host string, port int, interval, timeout time.Duration) error {
	address := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Probe immediately before waiting for the first tick.
	if probe(address) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, address, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
			if probe(address) {
				return nil
			}
		}
	}
}

func probe(address string) bool {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
