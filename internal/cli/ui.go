package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/registry"
	"github.com/matzehuels/orgchart/pkg/session"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - departments
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleStored = lipgloss.NewStyle().Foreground(colorGreen)
	styleSeeded = lipgloss.NewStyle().Foreground(colorYellow)

	styleCommand = lipgloss.NewStyle().Foreground(colorCyan)

	styleDepartment  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	stylePerson      = lipgloss.NewStyle().Foreground(colorWhite)
	styleUncontacted = lipgloss.NewStyle().Foreground(colorGray).Faint(true)
	styleHidden      = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Chart Display
// =============================================================================

// statsLine summarizes a snapshot on a single line.
func statsLine(s chart.Snapshot, origin session.Origin) string {
	counts := s.CountByType()
	var parts []string
	for _, t := range chart.Types {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	if len(s.Edges) > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", len(s.Edges)))
	}
	if len(parts) == 0 {
		parts = append(parts, "empty")
	}

	status := styleStored.Render(string(origin))
	if origin == session.OriginSeed {
		status = styleSeeded.Render(string(origin))
	}
	parts = append(parts, status)

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	return line.String()
}

// nodeTable renders the nodes of s as a table, members indented under
// their department.
func nodeTable(s chart.Snapshot, reg *registry.Registry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "TYPE", "POSITION", "SUMMARY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, n := range treeOrder(s) {
		pos := fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y)
		t.Row(strings.Repeat("  ", depth(s, n))+n.ID, string(n.Type()), pos, nodeStyle(n).Render(reg.Render(n)))
	}
	return t.Render()
}

// treeOrder lists departments before their members, depth first, and
// appends nodes whose parent is missing at the end.
func treeOrder(s chart.Snapshot) []chart.Node {
	out := make([]chart.Node, 0, len(s.Nodes))
	seen := make(map[string]bool, len(s.Nodes))
	var visit func(parent string)
	visit = func(parent string) {
		for _, n := range s.Children(parent) {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
			visit(n.ID)
		}
	}
	visit("")
	for _, n := range s.Nodes {
		if !seen[n.ID] {
			seen[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

// depth counts the resolvable ancestors of n.
func depth(s chart.Snapshot, n chart.Node) int {
	d := 0
	for p := n.ParentID; p != "" && d < len(s.Nodes); d++ {
		parent, ok := s.Node(p)
		if !ok {
			break
		}
		p = parent.ParentID
	}
	return d
}

// nodeStyle picks the summary style of a node.
func nodeStyle(n chart.Node) lipgloss.Style {
	if n.Hidden {
		return styleHidden
	}
	switch n.Type() {
	case chart.TypeDepartment:
		return styleDepartment
	case chart.TypePerson:
		if p, _ := n.Person(); !p.IsContacted {
			return styleUncontacted
		}
		return stylePerson
	}
	return StyleValue
}
