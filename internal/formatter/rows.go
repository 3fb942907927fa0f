package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// RowWriter renders result rows as an aligned text table, JSON or YAML
type RowWriter struct {
	writer io.Writer
	format string
}

// NewRowWriter creates a row writer for format "text", "json" or "yaml"
func NewRowWriter(w io.Writer, format string) (*RowWriter, error) {
	switch format {
	case "", formatText:
		format = formatText
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("invalid row format: %s (must be 'text', 'json' or 'yaml')", format)
	}
	return &RowWriter{writer: w, format: format}, nil
}

// Write renders rows. columns fixes the column order; when empty the
// sorted keys of the first row are used.
func (r *RowWriter) Write(columns []string, rows []map[string]any) error {
	if len(columns) == 0 && len(rows) > 0 {
		columns = sortedKeys(rows[0])
	}
	rows = normalizeRows(rows)

	switch r.format {
	case "json":
		return r.writeJSON(rows)
	case "yaml":
		return r.writeYAML(columns, rows)
	default:
		return r.writeText(columns, rows)
	}
}

func (r *RowWriter) writeText(columns []string, rows []map[string]any) error {
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(columns, "\t"))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellString(row[c])
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.writer, "(%d rows)\n", len(rows))
	return err
}

func (r *RowWriter) writeJSON(rows []map[string]any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// writeYAML builds the document node by node so columns keep their order
func (r *RowWriter) writeYAML(columns []string, rows []map[string]any) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range columns {
			var v yaml.Node
			if err := v.Encode(row[c]); err != nil {
				return fmt.Errorf("failed to encode column %s: %w", c, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, &v)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

// normalizeRows converts raw driver bytes to strings so they are not
// encoded as base64 or integer sequences
func normalizeRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = make(map[string]any, len(row))
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			out[i][k] = v
		}
	}
	return out
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
