package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thapedict/mydb/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if f.OutputFormat != formatMarkdown && f.OutputFormat != formatText {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		if err := f.writeTableFile(table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Sort tables alphabetically
	sortedTables := make([]schema.Table, len(s.Tables))
	copy(sortedTables, s.Tables)
	sort.Slice(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	if f.OutputFormat == formatMarkdown {
		f.writeMarkdownOverview(file, s.Database, sortedTables)
	} else {
		f.writeTextOverview(file, s.Database, sortedTables)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, database string, tables []schema.Table) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	if database != "" {
		_, _ = fmt.Fprintf(w, "Database: `%s`\n\n", database)
	}
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		if len(table.PrimaryKey) > 0 {
			_, _ = fmt.Fprintf(w, " (key: %s)", strings.Join(table.PrimaryKey, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, database string, tables []schema.Table) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	if database != "" {
		_, _ = fmt.Fprintf(w, "DATABASE %s\n", database)
	}
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())

	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "%s", table.Name)
		if len(table.PrimaryKey) > 0 {
			_, _ = fmt.Fprintf(w, " (key: %s)", strings.Join(table.PrimaryKey, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table schema.Table) error {
	filename := filepath.Join(f.OutputDir, table.Name+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(file).FormatTable(table)
	}
	return NewTextFormatter(file).FormatTable(table)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
