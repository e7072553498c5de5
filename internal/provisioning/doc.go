// Package provisioning orchestrates cluster creation as a sequence of
// phases.
//
// # Phases
//
//   - infrastructure: SSH key, private network, firewall, servers
//   - packages: container runtime and Kubernetes packages on every node
//   - controlplane: kubeadm init, overlay network, primary readiness
//   - credentials: join credential issuance on the primary
//   - join: secondaries join the control plane in parallel
//   - workload: optional manifest deployment
//
// # Core Types
//
// Context carries configuration, state, the infrastructure client, the
// remote connection factory and the observer. Phase defines a step with
// Name() and Provision() methods. State accumulates results from each
// phase (resource IDs, node handles, the join credential).
package provisioning
