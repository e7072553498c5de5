// Package main is the entry point for the kubeseed CLI.
//
// kubeseed provisions a small kubeadm-based Kubernetes cluster on
// Hetzner Cloud: it creates the private network, firewall and servers,
// installs the container runtime and Kubernetes packages over SSH,
// initializes the control plane and joins the worker nodes.
//
// Commands: init, apply, destroy, version.
//
// For detailed usage information, run:
//
//	kubeseed --help
package main

import (
	"fmt"
	"os"

	"github.com/kubeseed/kubeseed/cmd/kubeseed/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
