package cluster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_PrimaryPath(t *testing.T) {
	t.Parallel()

	n := NewNode("cp-1", RolePrimary, "10.0.1.1", "203.0.113.10")
	assert.Equal(t, StateUnprovisioned, n.State())

	for _, to := range []State{
		StatePackagesInstalled,
		StateClusterInitialized,
		StateOverlayApplied,
		StateReady,
	} {
		require.NoError(t, n.Transition(to))
	}

	assert.True(t, n.Ready())
	assert.NoError(t, n.LastError())
}

func TestNode_SecondaryPath(t *testing.T) {
	t.Parallel()

	n := NewNode("worker-1", RoleSecondary, "10.0.1.2", "203.0.113.11")

	for _, to := range []State{
		StatePackagesInstalled,
		StateWaitingForPrimary,
		StateJoined,
		StateReady,
	} {
		require.NoError(t, n.Transition(to))
	}

	assert.True(t, n.Ready())
}

func TestNode_InvalidTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from []State
		to   State
	}{
		{name: "skip packages", from: nil, to: StateClusterInitialized},
		{name: "join before waiting", from: []State{StatePackagesInstalled}, to: StateJoined},
		{name: "ready before overlay", from: []State{StatePackagesInstalled, StateClusterInitialized}, to: StateReady},
		{name: "leave terminal ready", from: []State{StatePackagesInstalled, StateWaitingForPrimary, StateJoined, StateReady}, to: StateWaitingForPrimary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := NewNode("n", RoleSecondary, "10.0.1.2", "")
			for _, s := range tt.from {
				require.NoError(t, n.Transition(s))
			}
			assert.Error(t, n.Transition(tt.to))
		})
	}
}

func TestNode_FailRecordsFirstError(t *testing.T) {
	t.Parallel()

	n := NewNode("n", RolePrimary, "10.0.1.1", "")
	first := errors.New("first")

	n.Fail(first)
	n.Fail(errors.New("second"))

	assert.Equal(t, StateFailed, n.State())
	assert.Same(t, first, n.LastError())
}

func TestNode_FailAfterReadyIgnored(t *testing.T) {
	t.Parallel()

	n := NewNode("n", RoleSecondary, "10.0.1.2", "")
	for _, s := range []State{StatePackagesInstalled, StateWaitingForPrimary, StateJoined, StateReady} {
		require.NoError(t, n.Transition(s))
	}

	n.Fail(errors.New("late"))
	assert.Equal(t, StateReady, n.State())
	assert.NoError(t, n.LastError())
}
