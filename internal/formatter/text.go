package formatter

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/thapedict/mydb/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	if s.Database != "" {
		_, _ = fmt.Fprintf(f.writer, "DATABASE %s\n\n", s.Database)
	}

	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.FormatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable writes a single table
func (f *TextFormatter) FormatTable(table schema.Table) error {
	pkStr := ""
	if len(table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	if _, err := fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr); err != nil {
		return err
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col, table.Required))
	}

	if len(table.Required) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  REQUIRED: %s\n", strings.Join(table.Required, ", "))
	}

	return nil
}

func (f *TextFormatter) formatColumn(col schema.Column, required []string) string {
	parts := []string{col.Name + ":", col.Type}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	if col.AutoGenerated {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if slices.Contains(required, col.Name) {
		parts = append(parts, "*")
	}

	return strings.Join(parts, " ")
}
