// Package ui provides the table renderer for list output.
package ui

import (
	"fmt"
	"strings"
)

// Table renders rows with dynamic column widths.
type Table struct {
	// Headers contains the column header names.
	Headers []string

	// Rows contains all data rows.
	Rows [][]string

	// MinWidths specifies minimum width per column index.
	MinWidths map[int]int

	// MaxWidths specifies maximum width per column index (truncates with
	// ellipsis).
	MaxWidths map[int]int
}

// NewTable creates a new table with the specified headers.
//
// Parameters:
//   - headers: Column header names
//
// Returns:
//   - *Table: A new table instance
func NewTable(headers ...string) *Table {
	return &Table{
		Headers:   headers,
		Rows:      make([][]string, 0),
		MinWidths: make(map[int]int),
		MaxWidths: make(map[int]int),
	}
}

// AddRow adds a data row to the table.
//
// Parameters:
//   - values: Cell values for the row
func (t *Table) AddRow(values ...string) {
	t.Rows = append(t.Rows, values)
}

// SetMinWidth sets the minimum width for a column.
func (t *Table) SetMinWidth(col, width int) {
	t.MinWidths[col] = width
}

// SetMaxWidth sets the maximum width for a column. Values exceeding it are
// truncated with ellipsis.
func (t *Table) SetMaxWidth(col, width int) {
	t.MaxWidths[col] = width
}

// calculateColumnWidths computes the width for each column from headers,
// values, and the configured min/max constraints.
func (t *Table) calculateColumnWidths() []int {
	numCols := len(t.Headers)
	widths := make([]int, numCols)

	for i, header := range t.Headers {
		widths[i] = len(header)
	}

	for _, row := range t.Rows {
		for i, val := range row {
			if i < numCols && len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}

	for i := range widths {
		if min, ok := t.MinWidths[i]; ok && widths[i] < min {
			widths[i] = min
		}
		if max, ok := t.MaxWidths[i]; ok && widths[i] > max {
			widths[i] = max
		}
	}

	// Shrink the widest column until the table fits the terminal.
	termWidth := TermWidth()
	for {
		total := 2 * (numCols - 1)
		for _, w := range widths {
			total += w
		}
		if total <= termWidth {
			break
		}
		widest := 0
		for i := 1; i < numCols; i++ {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 8 {
			break
		}
		widths[widest]--
	}

	return widths
}

// truncateWithEllipsis truncates a string to the specified width.
func truncateWithEllipsis(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// padRight pads a string to the specified width with spaces.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Render prints the table with calculated column widths. Headers are
// styled with TableHeaderStyle, cells with TableCellStyle.
func (t *Table) Render() {
	if len(t.Headers) == 0 {
		return
	}

	widths := t.calculateColumnWidths()
	colGap := "  "

	var headerCells []string
	for i, header := range t.Headers {
		cell := padRight(truncateWithEllipsis(header, widths[i]), widths[i])
		headerCells = append(headerCells, TableHeaderStyle.Render(cell))
	}
	fmt.Println(strings.Join(headerCells, colGap))

	totalWidth := 0
	for _, w := range widths {
		totalWidth += w
	}
	totalWidth += len(colGap) * (len(widths) - 1)
	fmt.Println(DimStyle.Render(strings.Repeat("─", totalWidth)))

	for _, row := range t.Rows {
		var cells []string
		for i := 0; i < len(t.Headers); i++ {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cell := padRight(truncateWithEllipsis(val, widths[i]), widths[i])
			cells = append(cells, TableCellStyle.Render(cell))
		}
		fmt.Println(strings.Join(cells, colGap))
	}
}
