// Package ssh provides SSH client utilities for executing commands on remote
// servers. It handles connection establishment with retry logic, key-based
// authentication, and command execution with context support.
//
// The primary use case is driving kubeadm and package installation on freshly
// created cloud servers, where SSH becomes available some time after boot.
//
// Security: Host key verification is disabled by default for ephemeral
// infrastructure. Configure HostKeyCallback for production environments with
// persistent servers.
package ssh
