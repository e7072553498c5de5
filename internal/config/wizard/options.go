package wizard

import "github.com/charmbracelet/huh"

// LocationOption represents a Hetzner Cloud datacenter location.
type LocationOption struct {
	Value       string
	Label       string
	Description string
}

// ServerTypeOption represents a Hetzner Cloud server type.
type ServerTypeOption struct {
	Value       string
	Label       string
	Description string
}

// VersionOption represents a Kubernetes version line.
type VersionOption struct {
	Value       string
	Label       string
	Description string
}

// Locations contains all valid Hetzner Cloud datacenter locations.
var Locations = []LocationOption{
	{Value: "nbg1", Label: "nbg1", Description: "Nuremberg, Germany"},
	{Value: "fsn1", Label: "fsn1", Description: "Falkenstein, Germany"},
	{Value: "hel1", Label: "hel1", Description: "Helsinki, Finland"},
	{Value: "ash", Label: "ash", Description: "Ashburn, USA"},
	{Value: "hil", Label: "hil", Description: "Hillsboro, USA"},
	{Value: "sin", Label: "sin", Description: "Singapore"},
}

// ServerTypes contains recommended server types for cluster nodes.
var ServerTypes = []ServerTypeOption{
	{Value: "cx22", Label: "cx22", Description: "2 vCPU, 4GB RAM (Intel)"},
	{Value: "cx32", Label: "cx32", Description: "4 vCPU, 8GB RAM (Intel)"},
	{Value: "cpx21", Label: "cpx21", Description: "3 vCPU, 4GB RAM (AMD)"},
	{Value: "cpx31", Label: "cpx31", Description: "4 vCPU, 8GB RAM (AMD)"},
	{Value: "cax21", Label: "cax21", Description: "4 vCPU, 8GB RAM (ARM)"},
}

// KubernetesVersions contains available Kubernetes version lines.
var KubernetesVersions = []VersionOption{
	{Value: "1.31", Label: "1.31", Description: "Latest stable"},
	{Value: "1.30", Label: "1.30", Description: "Previous stable"},
}

// SecondaryCountOptions contains common secondary node counts.
var SecondaryCountOptions = []huh.Option[int]{
	huh.NewOption("1", 1),
	huh.NewOption("2", 2),
	huh.NewOption("3", 3),
	huh.NewOption("5", 5),
}

// JoinStrategyOptions contains the credential issuance strategies.
var JoinStrategyOptions = []huh.Option[string]{
	huh.NewOption("remote - mint a token and parse the join command", "remote"),
	huh.NewOption("file - persist the join command on the primary and fetch it", "file"),
}

// FailurePolicyOptions contains workload failure policies.
var FailurePolicyOptions = []huh.Option[string]{
	huh.NewOption("warn - log and continue (Recommended)", "warn"),
	huh.NewOption("fail - fail the run", "fail"),
}

// LocationsToOptions converts LocationOption slice to huh.Option slice.
func LocationsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Locations))
	for i, loc := range Locations {
		opts[i] = huh.NewOption(loc.Label+" - "+loc.Description, loc.Value)
	}
	return opts
}

// ServerTypesToOptions converts ServerTypeOption slice to huh.Option slice.
func ServerTypesToOptions(types []ServerTypeOption) []huh.Option[string] {
	opts := make([]huh.Option[string], len(types))
	for i, st := range types {
		opts[i] = huh.NewOption(st.Label+" - "+st.Description, st.Value)
	}
	return opts
}

// VersionsToOptions converts VersionOption slice to huh.Option slice.
func VersionsToOptions(versions []VersionOption) []huh.Option[string] {
	opts := make([]huh.Option[string], len(versions))
	for i, v := range versions {
		opts[i] = huh.NewOption(v.Label+" - "+v.Description, v.Value)
	}
	return opts
}
