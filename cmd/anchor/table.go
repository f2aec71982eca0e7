package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// renderTable renders rows under headers in the rounded style shared by the
// sync summary, deps report, and config dump. Columns named in rightAligned
// (1-based) get right-aligned cells; headers stay left-aligned throughout.
func renderTable(headers table.Row, rows []table.Row, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)
	tw.AppendRows(rows)

	configs := make([]table.ColumnConfig, 0, len(headers))
	for column := 1; column <= len(headers); column++ {
		align := text.AlignLeft
		for _, right := range rightAligned {
			if right == column {
				align = text.AlignRight
				break
			}
		}
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// isTerminal reports whether writer is an interactive terminal; table output
// is reserved for humans, pipes get plain key=value lines.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
