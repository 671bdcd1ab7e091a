package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// newListTable builds a table with the shared appearance settings. Columns
// listed in wideCols get a minimum width so titles stay readable.
func newListTable(out io.Writer, headers []string, wideCols ...int) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	for _, col := range wideCols {
		table.SetColMinWidth(col, 40) // Make sure long columns are wide enough
	}
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align content to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping
	table.SetRowLine(false)                          // Disable row line
	return table
}

// cleanCell flattens line breaks so a value stays on a single table row.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// formatBytes renders a byte count in human-readable binary units.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
