package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
)

func TestStepRunner_AllStepsRun(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(nil)
	runner := NewStepRunner(comm, discardLogger, "node-1")

	steps := []Step{
		{Name: "one", Command: "echo one", Critical: true},
		{Name: "two", Command: "echo two", Critical: true},
		{Name: "three", Command: "echo three", Critical: false},
	}

	require.NoError(t, runner.Run(context.Background(), steps))
	assert.Equal(t, []string{"echo one", "echo two", "echo three"}, comm.executed())
}

func TestStepRunner_NonCriticalFailureContinues(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(func(command string) (string, error) {
		if strings.Contains(command, "flaky") {
			return "", errors.New("exit status 1")
		}
		return "", nil
	})
	runner := NewStepRunner(comm, discardLogger, "node-1")

	steps := []Step{
		{Name: "flaky warmup", Command: "flaky", Critical: false},
		{Name: "real work", Command: "echo real", Critical: true},
	}

	require.NoError(t, runner.Run(context.Background(), steps))
	// The later step still ran.
	assert.Contains(t, comm.executed(), "echo real")
}

func TestStepRunner_CriticalFailureAborts(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(func(command string) (string, error) {
		if strings.Contains(command, "broken") {
			return "", errors.New("exit status 1")
		}
		return "", nil
	})
	runner := NewStepRunner(comm, discardLogger, "node-1")

	steps := []Step{
		{Name: "install packages", Command: "broken", Critical: true},
		{Name: "never reached", Command: "echo later", Critical: true},
	}

	err := runner.Run(context.Background(), steps)
	require.Error(t, err)
	assert.True(t, IsCriticalStepFailure(err))
	assert.Contains(t, err.Error(), "install packages")
	assert.NotContains(t, comm.executed(), "echo later")
}

func TestStepRunner_TimeoutAbortsEvenNonCritical(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(func(string) (string, error) {
		return "", fmt.Errorf("wrapped: %w", ssh.ErrSessionTimeout)
	})
	runner := NewStepRunner(comm, discardLogger, "node-1")

	steps := []Step{
		{Name: "slow", Command: "sleep", Critical: false},
		{Name: "after", Command: "echo after", Critical: true},
	}

	err := runner.Run(context.Background(), steps)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Len(t, comm.executed(), 1)
}
