package cluster

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageBootstrapper_StepsByRole(t *testing.T) {
	t.Parallel()

	b := NewPackageBootstrapper(newFakeComm(nil), discardLogger, "node", "1.31")

	primary := b.Steps(RolePrimary)
	secondary := b.Steps(RoleSecondary)

	// One unified sequence per role; only the package set differs.
	require.Equal(t, len(primary), len(secondary))
	for i := range primary {
		assert.Equal(t, primary[i].Name, secondary[i].Name)
		assert.Equal(t, primary[i].Critical, secondary[i].Critical)
	}

	join := func(steps []Step) string {
		var sb strings.Builder
		for _, s := range steps {
			sb.WriteString(s.Command)
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	assert.Contains(t, join(primary), "kubectl")
	assert.NotContains(t, join(secondary), "apt-mark hold kubelet kubeadm kubectl")
	assert.Contains(t, join(secondary), "apt-mark hold kubelet kubeadm")
	assert.Contains(t, join(primary), "pkgs.k8s.io/core:/stable:/v1.31")
}

func TestPackageBootstrapper_ImagePreloadIsNonCritical(t *testing.T) {
	t.Parallel()

	b := NewPackageBootstrapper(newFakeComm(nil), discardLogger, "node", "1.31")

	var found bool
	for _, s := range b.Steps(RolePrimary) {
		if strings.Contains(s.Command, "kubeadm config images pull") {
			found = true
			assert.False(t, s.Critical)
		}
	}
	assert.True(t, found)
}

func TestPackageBootstrapper_InstallTransitions(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(nil)
	b := NewPackageBootstrapper(comm, discardLogger, "node-1", "1.31")
	node := NewNode("node-1", RoleSecondary, "10.0.1.2", "")

	require.NoError(t, b.Install(context.Background(), node))
	assert.Equal(t, StatePackagesInstalled, node.State())
	assert.NotEmpty(t, comm.executed())
}

func TestPackageBootstrapper_CriticalFailureFailsNode(t *testing.T) {
	t.Parallel()

	comm := newFakeComm(func(command string) (string, error) {
		if strings.Contains(command, "containerd") {
			return "", errors.New("exit status 100")
		}
		return "", nil
	})
	b := NewPackageBootstrapper(comm, discardLogger, "node-1", "1.31")
	node := NewNode("node-1", RolePrimary, "10.0.1.1", "")

	err := b.Install(context.Background(), node)
	require.Error(t, err)
	assert.Equal(t, StateFailed, node.State())
	assert.Error(t, node.LastError())
}
