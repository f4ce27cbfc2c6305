package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-meshroute/pkg/fragment"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	hopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			Bold(true)

	lossyHopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	arrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// renderRoute draws a path as "11 → 1 → 2 → 12", marking hops with a
// non-zero drop rate.
func renderRoute(path []topology.NodeID, topo *topology.Topology) string {
	if len(path) == 0 {
		return errorStyle.Render("no route")
	}
	parts := make([]string, len(path))
	for i, id := range path {
		label := fmt.Sprintf("%d", id)
		if name, ok := topo.Label(id); ok {
			label = fmt.Sprintf("%d:%s", id, name)
		}
		style := hopStyle
		if topo.Percent(id) > 0 {
			style = lossyHopStyle
			label = fmt.Sprintf("%s (%d%%)", label, topo.Percent(id))
		}
		parts[i] = style.Render(label)
	}
	return strings.Join(parts, arrowStyle.Render(" → "))
}

// renderFragments lists the layout of a fragmented session
func renderFragments(sessionID uint64, fragments []fragment.Fragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %016x\n", sessionID)
	for _, f := range fragments {
		fmt.Fprintf(&b, "  #%-3d of %-3d %3d bytes\n", f.Index, f.Total, f.Length)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
