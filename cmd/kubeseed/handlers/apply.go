// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kubeseed/kubeseed/internal/cluster"
	"github.com/kubeseed/kubeseed/internal/config"
	hcloudinternal "github.com/kubeseed/kubeseed/internal/platform/hcloud"
	s3internal "github.com/kubeseed/kubeseed/internal/platform/s3"
	sshpkg "github.com/kubeseed/kubeseed/internal/platform/ssh"
	"github.com/kubeseed/kubeseed/internal/provisioning"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newInfraClient creates a new infrastructure client.
	newInfraClient = func(token string) hcloudinternal.InfrastructureManager {
		return hcloudinternal.NewRealClient(token)
	}

	// newObjectStore creates the S3 client used for object-storage workloads.
	newObjectStore = func(cfg *config.Config) (objectStore, error) {
		return s3internal.NewClient(
			cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.Region,
			os.Getenv("KUBESEED_S3_ACCESS_KEY"),
			os.Getenv("KUBESEED_S3_SECRET_KEY"),
		)
	}

	// applyOut receives the node summary and next-step hints.
	applyOut io.Writer = os.Stdout

	// newProvisioningContext creates a new provisioning context.
	newProvisioningContext = provisioning.NewContext

	// runPhases executes the provisioning pipeline.
	runPhases = provisioning.RunPhases

	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.Load
)

// Apply provisions a kubeadm Kubernetes cluster on Hetzner Cloud.
//
// This function orchestrates the complete bootstrap workflow:
//  1. Loads and validates the cluster configuration
//  2. Initializes the Hetzner Cloud client using HCLOUD_TOKEN
//  3. Runs the provisioning pipeline: infrastructure, packages,
//     control plane, join credentials, worker joins, workload
//  4. Prints a per-node summary of the finished cluster
//
// The SSH private key path may be filled in by the infrastructure phase
// when no key is configured, so the connector reads it lazily per
// connection rather than once up front.
func Apply(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Applying configuration for cluster: %s", cfg.ClusterName)

	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" {
		return fmt.Errorf("HCLOUD_TOKEN environment variable is not set")
	}

	pCtx := newProvisioningContext(ctx, cfg, newInfraClient(token), nil)
	pCtx.Connect = sshConnector(cfg, pCtx.Timeouts)

	if cfg.Workload != nil && cfg.Workload.Object != nil {
		store, err := newObjectStore(cfg)
		if err != nil {
			return fmt.Errorf("configuring object storage: %w", err)
		}
		pCtx.Fetcher = store

		if cfg.Workload.Object.Manifest != "" {
			if err := pushManifest(ctx, store, cfg.Workload.Object); err != nil {
				return fmt.Errorf("uploading workload manifest: %w", err)
			}
		}
	}

	if err := runPhases(pCtx, provisioning.ApplyPhases()); err != nil {
		printApplyFailure(cfg, pCtx.State)
		return err
	}

	printApplySuccess(cfg, pCtx.State)
	return nil
}

// objectStore is the object-storage surface the apply path needs: the
// fetch side consumed by the workload phase plus the upload side used
// to seed the bucket before the run.
type objectStore interface {
	cluster.ObjectFetcher
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// pushManifest uploads the local manifest file to the configured bucket
// and key, creating the bucket first when it does not exist yet.
func pushManifest(ctx context.Context, store objectStore, obj *config.ObjectWorkload) error {
	data, err := os.ReadFile(obj.Manifest)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", obj.Manifest, err)
	}
	if err := store.EnsureBucket(ctx, obj.Bucket); err != nil {
		return err
	}
	if err := store.PutObject(ctx, obj.Bucket, obj.Key, data); err != nil {
		return err
	}
	log.Printf("Uploaded workload manifest %s to %s/%s", obj.Manifest, obj.Bucket, obj.Key)
	return nil
}

// loadConfig loads and validates the cluster configuration.
// If configPath is empty, it looks for kubeseed.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'kubeseed init' to create one", err)
	}
	return cfg, nil
}

// sshConnector builds the per-host SSH connection factory used by the
// provisioning phases. The private key is read per connection because
// the infrastructure phase may generate it after the context is built.
func sshConnector(cfg *config.Config, timeouts *config.Timeouts) provisioning.ConnectFunc {
	return func(host string) (sshpkg.Communicator, error) {
		key, err := os.ReadFile(cfg.SSH.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading ssh private key: %w", err)
		}
		return sshpkg.NewClient(&sshpkg.Config{
			Host:           host,
			User:           cfg.SSH.User,
			PrivateKey:     key,
			SessionTimeout: timeouts.Session,
		})
	}
}

// printApplySuccess outputs the node summary and next steps for the user.
func printApplySuccess(cfg *config.Config, state *provisioning.State) {
	fmt.Fprint(applyOut, renderNodeSummary(cfg.ClusterName, state.Nodes()))

	if state.KeyPairPath != "" {
		fmt.Fprintf(applyOut, "\nGenerated SSH key pair: %s\n", state.KeyPairPath)
	}

	primary := state.Node(cfg.Nodes.Primary.Name)
	if primary == nil {
		return
	}

	fmt.Fprintf(applyOut, "\nYou can now access your cluster with:\n")
	fmt.Fprintf(applyOut, "  ssh %s@%s kubectl get nodes\n", cfg.SSH.User, primary.PublicIP)
	fmt.Fprintln(applyOut)
}

// printApplyFailure reports the per-node outcome of a failed run, so
// partial progress and each node's last error stay visible alongside
// the returned error.
func printApplyFailure(cfg *config.Config, state *provisioning.State) {
	if len(state.Nodes()) == 0 {
		return
	}
	fmt.Fprint(applyOut, renderNodeSummary(cfg.ClusterName, state.Nodes()))
	fmt.Fprintln(applyOut)
}
