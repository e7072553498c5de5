package handlers

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kubeseed/kubeseed/internal/cluster"
)

var (
	summaryColorGreen = lipgloss.Color("#22c55e")
	summaryColorRed   = lipgloss.Color("#ef4444")
	summaryColorBlue  = lipgloss.Color("#3b82f6")
	summaryColorDim   = lipgloss.Color("#6b7280")
	summaryColorWhite = lipgloss.Color("#f9fafb")
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(summaryColorWhite)

	summaryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(summaryColorBlue)

	summaryDimStyle = lipgloss.NewStyle().
			Foreground(summaryColorDim)

	summaryGreenStyle = lipgloss.NewStyle().
				Foreground(summaryColorGreen)

	summaryRedStyle = lipgloss.NewStyle().
			Foreground(summaryColorRed)
)

// stdoutIsTerminal reports whether stdout is attached to a terminal.
// Replaced in tests to exercise both render paths.
var stdoutIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderNodeSummary produces the per-node summary printed after apply.
// Styling is skipped when stdout is not a terminal so the output stays
// grep-friendly in CI logs.
func renderNodeSummary(clusterName string, nodes []*cluster.Node) string {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	styled := stdoutIsTerminal()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styleIf(styled, summaryTitleStyle, fmt.Sprintf("  kubeseed cluster: %s", clusterName)))
	b.WriteString("\n")
	b.WriteString(styleIf(styled, summaryDimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(styleIf(styled, summaryHeaderStyle,
		fmt.Sprintf("  %-20s %-10s %-16s %s", "Node", "Role", "Private IP", "State")))
	b.WriteString("\n")
	b.WriteString(styleIf(styled, summaryDimStyle, "  "+strings.Repeat("─", 56)))
	b.WriteString("\n")

	for _, node := range nodes {
		line := fmt.Sprintf("  %-20s %-10s %-16s %s",
			node.Name, node.Role, node.PrivateIP, renderState(styled, node.State()))
		b.WriteString(line)
		b.WriteString("\n")
		if err := node.LastError(); err != nil {
			b.WriteString(styleIf(styled, summaryDimStyle, fmt.Sprintf("    └─ %v", err)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderState colorizes the terminal states.
func renderState(styled bool, state cluster.State) string {
	switch state {
	case cluster.StateReady:
		return styleIf(styled, summaryGreenStyle, string(state))
	case cluster.StateFailed:
		return styleIf(styled, summaryRedStyle, string(state))
	default:
		return string(state)
	}
}

func styleIf(styled bool, style lipgloss.Style, s string) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
