package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/models"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleBold   = lipgloss.NewStyle().Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f"))
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// renderTable renders an aligned table with a header separator line.
// Column widths are measured with lipgloss so styled cells align.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2
	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			b.WriteString(style(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return styleHeader.Render(s) })
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeRow(seps, func(s string) string { return styleDim.Render(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

func nodeRows(nodes []models.HierarchyNode) [][]string {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.ShortCode, n.Name, string(n.NodeType), n.ParentShortCode, n.ID, archivedLabel(n.Archived)})
	}
	return rows
}

var nodeHeaders = []string{"SHORT CODE", "NAME", "TYPE", "PARENT", "ID", "ARCHIVED"}

func archivedLabel(archived bool) string {
	if archived {
		return "yes"
	}
	return "no"
}

// renderNode renders one node as a labelled block.
func renderNode(n *models.HierarchyNode) string {
	var b strings.Builder
	b.WriteString(styleBold.Render(n.Name) + "  " + styleDim.Render(string(n.NodeType)) + "\n\n")
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("  " + styleDim.Render(label) + "  " + value + "\n")
	}
	field("ID        ", n.ID)
	field("SHORT CODE", n.ShortCode)
	field("PARENT    ", n.ParentShortCode)
	field("PARENT ID ", n.ParentID)
	if n.Archived {
		field("ARCHIVED  ", styleWarn.Render("yes"))
	}
	return b.String()
}

// renderTree draws the forest with box-drawing connectors.
func renderTree(forest []*client.TreeNode) string {
	var b strings.Builder
	for _, tn := range forest {
		b.WriteString(treeLabel(tn.Node) + "\n")
		renderChildren(&b, tn.Children, "")
	}
	return b.String()
}

func renderChildren(b *strings.Builder, children []*client.TreeNode, prefix string) {
	for i, child := range children {
		last := i == len(children)-1
		connector, next := treeBranch, treePipe
		if last {
			connector, next = treeCorner, treeSpace
		}
		b.WriteString(prefix + connector + treeLabel(child.Node) + "\n")
		renderChildren(b, child.Children, prefix+next)
	}
}

func treeLabel(n models.HierarchyNode) string {
	label := n.Name + " " + styleDim.Render("("+n.ShortCode+")")
	if n.Archived {
		label += " " + styleWarn.Render("[archived]")
	}
	return label
}
