package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hawarun/internal/ipc"
	"hawarun/internal/manifest"
)

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// printDryRun shows what would be sent for m without dialing the daemon.
func printDryRun(w io.Writer, m *manifest.Manifest, socket string) error {
	frame, err := ipc.EncodeFrame(m.Request())
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Manifest", m.Path},
		{"Directory", m.Directory},
		{"Package", displayValue(m.Package)},
		{"App", displayValue(m.App)},
		{"Command", displayValue(m.Command)},
	}
	if m.Arch != "" {
		rows = append(rows, []string{"Arch", m.Arch})
	}
	for _, filter := range m.SaveFilters {
		value := filter.Include
		if len(filter.Exclude) > 0 {
			value += " (except " + strings.Join(filter.Exclude, ", ") + ")"
		}
		rows = append(rows, []string{"Save filter", value})
	}
	rows = append(rows, []string{"Socket", socket})

	if _, err := fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Frame: %s", frame)
	return err
}

func displayValue(value string) string {
	if value == "" {
		return "(empty)"
	}
	return value
}
