package recorder

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/devicelab-dev/droidreplay/pkg/uitree"
)

// maxLabelWidth caps the TEXT/DESC column, in runes.
const maxLabelWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Table renders static rows with aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render returns the table text, or "" when there are no rows.
func (t *Table) Render() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	// Width includes padding.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	writeRow := func(style lipgloss.Style, cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(mutedStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headerStyle, t.Headers)
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range t.Rows {
		writeRow(cellStyle, row)
	}
	return sb.String()
}

// NodeTable builds the element table shown by dump and fast.
func NodeTable(nodes []uitree.FlatNode) *Table {
	t := NewTable("IDX", "TEXT/DESC", "CLASS", "BOUNDS")
	for _, n := range nodes {
		bounds := "Invalid"
		if r, ok := uitree.Bounds(n); ok {
			bounds = r.String()
		}
		t.AddRow(strconv.Itoa(n.Index), displayLabel(n), n.ShortClass(), bounds)
	}
	return t
}

// displayLabel shortens the node label for the table. Resource ids lose their
// "package:id/" prefix.
func displayLabel(n uitree.FlatNode) string {
	label := n.Label()
	if n.Text == "" && n.ContentDescription == "" {
		if i := strings.Index(label, ":id/"); i >= 0 {
			label = label[i+len(":id/"):]
		}
	}
	label = strings.Join(strings.Fields(label), " ")
	if r := []rune(label); len(r) > maxLabelWidth {
		label = string(r[:maxLabelWidth-3]) + "..."
	}
	return label
}
