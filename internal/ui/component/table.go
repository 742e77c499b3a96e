package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rovshanmuradov/vault-browser/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table is a scrolling, single-selection table.
type Table struct {
	columns   []TableColumn
	rows      [][]string
	rowStyles map[int]lipgloss.Style
	width     int
	height    int
	selected  int
	offset    int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		rowStyles: make(map[int]lipgloss.Style),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = columns
	return t
}

// SetRows replaces all rows. The selection is clamped to the new row count.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	t.rowStyles = make(map[int]lipgloss.Style)
	t.SetSelectedRow(t.selected)
	return t
}

// SetRowStyle sets a custom style for a specific row
func (t *Table) SetRowStyle(rowIndex int, style lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rowStyles[rowIndex] = style
	}
	return t
}

// SetSize sets the table dimensions
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	t.scroll()
	return t
}

// SetSelectedRow sets the currently selected row
func (t *Table) SetSelectedRow(index int) *Table {
	t.selected = max(0, min(index, len(t.rows)-1))
	t.scroll()
	return t
}

// SelectedRow returns the currently selected row index
func (t *Table) SelectedRow() int {
	return t.selected
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	return t.SetSelectedRow(t.selected - 1)
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	return t.SetSelectedRow(t.selected + 1)
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// visibleRows is the number of body rows that fit below the header.
func (t *Table) visibleRows() int {
	// border (2) + header (1) + separator (1)
	if n := t.height - 4; n > 0 {
		return n
	}
	return len(t.rows)
}

// scroll keeps the selected row inside the window.
func (t *Table) scroll() {
	window := t.visibleRows()
	switch {
	case t.selected < t.offset:
		t.offset = t.selected
	case t.selected >= t.offset+window:
		t.offset = t.selected - window + 1
	}
	t.offset = max(0, min(t.offset, len(t.rows)-window))
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder

	var header []string
	var separator []string
	for _, col := range t.columns {
		header = append(header, renderCell(col.Header, col, t.headerStyle))
		separator = append(separator, strings.Repeat("─", col.Width+2))
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")
	content.WriteString(strings.Join(separator, "┼"))

	end := min(len(t.rows), t.offset+t.visibleRows())
	for i := t.offset; i < end; i++ {
		rowStyle := t.rowStyle
		if custom, ok := t.rowStyles[i]; ok {
			rowStyle = custom
		}
		if i == t.selected {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for c, col := range t.columns {
			var data string
			if c < len(t.rows[i]) {
				data = t.rows[i][c]
			}
			cells[c] = renderCell(data, col, rowStyle)
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	return t.borderStyle.Render(content.String())
}

// renderCell truncates content to the column width and aligns it.
func renderCell(content string, col TableColumn, style lipgloss.Style) string {
	if runewidth.StringWidth(content) > col.Width {
		content = runewidth.Truncate(content, col.Width, "…")
	}
	return style.Width(col.Width + 2).Align(col.Align).Render(content)
}
