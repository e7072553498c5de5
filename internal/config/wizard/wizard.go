package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Cluster Identity
	ClusterName string
	Location    string
	ServerType  string

	// Nodes
	SecondaryCount int

	// Kubernetes
	KubernetesVersion string

	// Join credential issuance
	JoinStrategy string

	// Workload (optional)
	DeployWorkload bool
	WorkloadRepo   string
	WorkloadPath   string
	FailurePolicy  string
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runClusterIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("cluster identity: %w", err)
	}

	if err := runNodesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}

	if err := runKubernetesGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("kubernetes: %w", err)
	}

	if err := runWorkloadGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("workload: %w", err)
	}

	return result, nil
}
