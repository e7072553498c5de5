// Package cluster implements the kubeadm bootstrap core: typed bootstrap
// steps, the role-parameterized package sequence, control-plane
// initialization, join-credential issuance, secondary join, and workload
// manifest deployment.
//
// All remote interaction goes through the ssh.Communicator interface; the
// package never talks to a cloud API. Ordering between the primary's
// initialization, credential issuance, and secondary joins is enforced by
// the provisioning pipeline, not by timing.
package cluster
