package formatter

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/thapedict/mydb/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	if s.Database != "" {
		_, _ = fmt.Fprintf(f.writer, "# Database Schema: %s\n", s.Database)
	} else {
		_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	}
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables {
		if err := f.FormatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.Table) error {
	if _, err := fmt.Fprintf(f.writer, "## %s\n\n", table.Name); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		constraintStr := f.formatConstraints(col, table)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.Type, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.Required) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Required on insert")
		_, _ = fmt.Fprintln(f.writer)
		for _, name := range table.Required {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", name)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column, table schema.Table) string {
	var constraints []string

	if slices.Contains(table.PrimaryKey, col.Name) {
		constraints = append(constraints, "PK")
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.Default != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	if col.AutoGenerated {
		constraints = append(constraints, "AUTO_INCREMENT")
	}

	return strings.Join(constraints, ", ")
}
