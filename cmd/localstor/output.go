package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Format is an output format for command results
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var outputFormat = FormatTable

// setOutputFormat validates format. An empty format picks a table on a
// terminal and JSON when stdout is redirected.
func setOutputFormat(format string) error {
	if format == "" {
		fd := os.Stdout.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			outputFormat = FormatTable
		} else {
			outputFormat = FormatJSON
		}
		return nil
	}

	switch f := Format(format); f {
	case FormatTable, FormatJSON, FormatYAML:
		outputFormat = f
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (valid formats: table, json, yaml)", format)
	}
}

// table describes how a result renders as rows
type table struct {
	header string
	rows   [][]any
	empty  string
}

// render writes v in the selected format, using t for table output
func render(w io.Writer, format Format, v any, t table) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(t.rows) == 0 {
		_, err := fmt.Fprintln(w, t.empty)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, t.header)
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, cellString(cell))
		}
		_, _ = fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func cellString(v any) string {
	switch c := v.(type) {
	case string:
		if c == "" {
			return "-"
		}
		return c
	case []string:
		if len(c) == 0 {
			return "-"
		}
		return strings.Join(c, ",")
	default:
		return fmt.Sprint(c)
	}
}

// formatBytes formats a byte count with binary units.
// Examples: "512 B", "4.0 KiB", "931.5 GiB"
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
