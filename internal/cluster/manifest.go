package cluster

import (
	"context"
	"fmt"
	"path"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// FailurePolicy decides what a manifest deployment failure does to the run.
type FailurePolicy string

const (
	// PolicyWarn logs the failure and lets the run finish Ready.
	PolicyWarn FailurePolicy = "warn"
	// PolicyFail fails the provisioning run.
	PolicyFail FailurePolicy = "fail"
)

// GitSource fetches the manifest from a version-control checkout performed
// on the primary node.
type GitSource struct {
	RepoURL string
	// Path is the manifest file's path within the repository.
	Path string
}

// ObjectSource fetches the manifest from object storage.
type ObjectSource struct {
	Bucket string
	Key    string
}

// ObjectFetcher retrieves object content by bucket and key.
// Implemented by the s3 platform client.
type ObjectFetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ManifestSource names where the workload manifest comes from.
// Exactly one of Git or Object is set.
type ManifestSource struct {
	Git    *GitSource
	Object *ObjectSource
}

// ManifestDeployer applies a workload manifest against the ready cluster,
// driving kubectl on the primary node.
type ManifestDeployer struct {
	comm    ssh.Communicator
	log     Logger
	fetcher ObjectFetcher
	policy  FailurePolicy
}

// NewManifestDeployer creates a deployer. fetcher may be nil when only git
// sources are used.
func NewManifestDeployer(comm ssh.Communicator, log Logger, fetcher ObjectFetcher, policy FailurePolicy) *ManifestDeployer {
	return &ManifestDeployer{comm: comm, log: log, fetcher: fetcher, policy: policy}
}

// Deploy fetches and applies the manifest. Under PolicyWarn a failure is
// logged and nil is returned so the run finishes Ready; under PolicyFail
// the error propagates and fails the run.
func (d *ManifestDeployer) Deploy(ctx context.Context, source ManifestSource) error {
	err := d.deploy(ctx, source)
	if err == nil {
		return nil
	}

	if d.policy == PolicyWarn {
		d.log.Printf("workload manifest deployment failed (policy=warn, continuing): %v", err)
		return nil
	}
	return fmt.Errorf("workload manifest deployment: %w", err)
}

func (d *ManifestDeployer) deploy(ctx context.Context, source ManifestSource) error {
	switch {
	case source.Git != nil:
		return d.deployFromGit(ctx, source.Git)
	case source.Object != nil:
		return d.deployFromObject(ctx, source.Object)
	default:
		return fmt.Errorf("no manifest source configured")
	}
}

// deployFromGit clones the repository on the primary and applies the
// manifest from the checkout.
func (d *ManifestDeployer) deployFromGit(ctx context.Context, src *GitSource) error {
	d.log.Printf("deploying workload manifest from %s", src.RepoURL)

	checkout := "/tmp/kubeseed-workload"
	cmd := fmt.Sprintf(
		"rm -rf %q && git clone --depth 1 %q %q && kubectl --kubeconfig /etc/kubernetes/admin.conf apply -f %q",
		checkout, src.RepoURL, checkout, path.Join(checkout, src.Path))

	if _, err := d.comm.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("applying manifest from %s: %w", src.RepoURL, err)
	}
	return nil
}

// deployFromObject pulls the manifest out of object storage, uploads it to
// the primary, and applies it there.
func (d *ManifestDeployer) deployFromObject(ctx context.Context, src *ObjectSource) error {
	if d.fetcher == nil {
		return fmt.Errorf("object source configured but no object storage client available")
	}

	d.log.Printf("deploying workload manifest from bucket %s key %s", src.Bucket, src.Key)

	content, err := d.fetcher.GetObject(ctx, src.Bucket, src.Key)
	if err != nil {
		return fmt.Errorf("fetching manifest object: %w", err)
	}

	remotePath := "/tmp/kubeseed-workload.yaml"
	if err := d.comm.Upload(ctx, content, remotePath); err != nil {
		return fmt.Errorf("uploading manifest to primary: %w", err)
	}

	cmd := fmt.Sprintf("kubectl --kubeconfig /etc/kubernetes/admin.conf apply -f %q", remotePath)
	if _, err := d.comm.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("applying manifest: %w", err)
	}
	return nil
}
