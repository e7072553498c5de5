// Package wizard provides an interactive configuration generator.
//
// The wizard walks the operator through cluster identity, node layout,
// Kubernetes settings and the optional workload deployment, then builds
// a config.Config and writes it as YAML.
package wizard
