package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/config"
	hcloudinternal "github.com/kubeseed/kubeseed/internal/platform/hcloud"
	"github.com/kubeseed/kubeseed/internal/provisioning"
	"github.com/kubeseed/kubeseed/internal/util/keygen"
)

const handlerTestYAML = `
cluster_name: demo
location: nbg1
nodes:
  primary:
    name: demo-primary
    private_ip: 10.0.1.10
  secondaries:
    - name: demo-worker-1
      private_ip: 10.0.1.11
`

func testHandlerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromBytes([]byte(handlerTestYAML))
	require.NoError(t, err)
	return cfg
}

// fakeObjectStore satisfies the objectStore surface without touching the
// network, recording the upload side for assertions.
type fakeObjectStore struct {
	ensuredBuckets []string
	putBucket      string
	putKey         string
	putData        []byte
}

func (f *fakeObjectStore) GetObject(context.Context, string, string) ([]byte, error) {
	return []byte("kind: ConfigMap"), nil
}

func (f *fakeObjectStore) EnsureBucket(_ context.Context, bucket string) error {
	f.ensuredBuckets = append(f.ensuredBuckets, bucket)
	return nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	f.putBucket = bucket
	f.putKey = key
	f.putData = data
	return nil
}

type applyCapture struct {
	pCtx *provisioning.Context
	out  *bytes.Buffer
}

func stubApplyFactories(t *testing.T, cfg *config.Config) *applyCapture {
	t.Helper()

	origLoad := loadConfigFile
	origInfra := newInfraClient
	origRun := runPhases
	origTerminal := stdoutIsTerminal
	origOut := applyOut
	t.Cleanup(func() {
		loadConfigFile = origLoad
		newInfraClient = origInfra
		runPhases = origRun
		stdoutIsTerminal = origTerminal
		applyOut = origOut
	})

	loadConfigFile = func(string) (*config.Config, error) { return cfg, nil }
	newInfraClient = func(string) hcloudinternal.InfrastructureManager { return nil }
	stdoutIsTerminal = func() bool { return false }

	captured := &applyCapture{out: &bytes.Buffer{}}
	applyOut = captured.out
	runPhases = func(ctx *provisioning.Context, phases []provisioning.Phase) error {
		captured.pCtx = ctx
		return nil
	}
	return captured
}

func TestApply(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	cfg := testHandlerConfig(t)
	captured := stubApplyFactories(t, cfg)

	require.NoError(t, Apply(context.Background(), "kubeseed.yaml"))

	require.NotNil(t, captured.pCtx)
	assert.Equal(t, "demo", captured.pCtx.Config.ClusterName)
	assert.NotNil(t, captured.pCtx.Connect)
	assert.Nil(t, captured.pCtx.Fetcher, "no object workload configured")
}

func TestApply_MissingToken(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "")

	cfg := testHandlerConfig(t)
	stubApplyFactories(t, cfg)

	err := Apply(context.Background(), "kubeseed.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HCLOUD_TOKEN")
}

func TestApply_ConfigLoadError(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	stubApplyFactories(t, nil)
	loadConfigFile = func(string) (*config.Config, error) {
		return nil, errors.New("no such file")
	}

	err := Apply(context.Background(), "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestApply_PipelineError(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	cfg := testHandlerConfig(t)
	stubApplyFactories(t, cfg)
	runPhases = func(*provisioning.Context, []provisioning.Phase) error {
		return errors.New("controlplane phase failed")
	}

	err := Apply(context.Background(), "kubeseed.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "controlplane phase failed")
}

func TestApply_PipelineErrorPrintsNodeStates(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	cfg := testHandlerConfig(t)
	captured := stubApplyFactories(t, cfg)
	runPhases = func(ctx *provisioning.Context, phases []provisioning.Phase) error {
		primary := cluster.NewNode("demo-primary", cluster.RolePrimary, "10.0.1.10", "203.0.113.10")
		primary.Fail(errors.New("kubeadm init exhausted retries"))
		ctx.State.AddNode(primary)

		worker := cluster.NewNode("demo-worker-1", cluster.RoleSecondary, "10.0.1.11", "203.0.113.11")
		ctx.State.AddNode(worker)
		return errors.New("controlplane phase failed")
	}

	err := Apply(context.Background(), "kubeseed.yaml")
	require.Error(t, err)

	out := captured.out.String()
	assert.Contains(t, out, "demo-primary")
	assert.Contains(t, out, string(cluster.StateFailed))
	assert.Contains(t, out, "kubeadm init exhausted retries")
	assert.Contains(t, out, "demo-worker-1")
	assert.Contains(t, out, string(cluster.StateUnprovisioned))
}

func TestApply_WiresObjectFetcher(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	cfg := testHandlerConfig(t)
	cfg.ObjectStorage = config.ObjectStorageConfig{Endpoint: "https://objects.example", Region: "fsn1"}
	cfg.Workload = &config.WorkloadConfig{
		OnFailure: "warn",
		Object:    &config.ObjectWorkload{Bucket: "manifests", Key: "app.yaml"},
	}

	captured := stubApplyFactories(t, cfg)

	origStore := newObjectStore
	t.Cleanup(func() { newObjectStore = origStore })
	store := &fakeObjectStore{}
	newObjectStore = func(got *config.Config) (objectStore, error) {
		assert.Equal(t, "https://objects.example", got.ObjectStorage.Endpoint)
		return store, nil
	}

	require.NoError(t, Apply(context.Background(), "kubeseed.yaml"))
	require.NotNil(t, captured.pCtx)
	assert.NotNil(t, captured.pCtx.Fetcher)
	assert.Empty(t, store.ensuredBuckets, "no local manifest configured")
}

func TestApply_PushesLocalManifest(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	manifestPath := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("kind: Deployment"), 0o600))

	cfg := testHandlerConfig(t)
	cfg.ObjectStorage = config.ObjectStorageConfig{Endpoint: "https://objects.example", Region: "fsn1"}
	cfg.Workload = &config.WorkloadConfig{
		OnFailure: "warn",
		Object:    &config.ObjectWorkload{Bucket: "manifests", Key: "app.yaml", Manifest: manifestPath},
	}

	stubApplyFactories(t, cfg)

	origStore := newObjectStore
	t.Cleanup(func() { newObjectStore = origStore })
	store := &fakeObjectStore{}
	newObjectStore = func(*config.Config) (objectStore, error) { return store, nil }

	require.NoError(t, Apply(context.Background(), "kubeseed.yaml"))

	assert.Equal(t, []string{"manifests"}, store.ensuredBuckets)
	assert.Equal(t, "manifests", store.putBucket)
	assert.Equal(t, "app.yaml", store.putKey)
	assert.Equal(t, []byte("kind: Deployment"), store.putData)
}

func TestApply_MissingLocalManifest(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")

	cfg := testHandlerConfig(t)
	cfg.ObjectStorage = config.ObjectStorageConfig{Endpoint: "https://objects.example", Region: "fsn1"}
	cfg.Workload = &config.WorkloadConfig{
		OnFailure: "warn",
		Object:    &config.ObjectWorkload{Bucket: "manifests", Key: "app.yaml", Manifest: filepath.Join(t.TempDir(), "absent.yaml")},
	}

	stubApplyFactories(t, cfg)

	origStore := newObjectStore
	t.Cleanup(func() { newObjectStore = origStore })
	newObjectStore = func(*config.Config) (objectStore, error) { return &fakeObjectStore{}, nil }

	err := Apply(context.Background(), "kubeseed.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploading workload manifest")
}

func TestSSHConnector_ReadsKeyPerConnection(t *testing.T) {
	t.Parallel()

	cfg := testHandlerConfig(t)
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	cfg.SSH.PrivateKeyPath = keyPath

	connect := sshConnector(cfg, config.LoadTimeouts())

	// The key does not exist yet, mirroring a run where the
	// infrastructure phase generates it later.
	_, err := connect("192.0.2.1")
	require.Error(t, err)

	pair, err := keygen.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	require.NoError(t, pair.WritePrivateKey(keyPath))

	comm, err := connect("192.0.2.1")
	require.NoError(t, err)
	assert.NotNil(t, comm)
}
