package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thapedict/mydb/internal/schema"
)

func strPtr(s string) *string { return &s }

func testSchema() *schema.Schema {
	return &schema.Schema{
		Database: "shop",
		Tables: []schema.Table{
			{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "int(11)", Key: schema.KeyPrimary, AutoGenerated: true},
					{Name: "name", Type: "varchar(255)"},
					{Name: "status", Type: "varchar(16)", Default: strPtr("active")},
					{Name: "email", Type: "text", Nullable: true},
				},
				PrimaryKey: []string{"id"},
				Required:   []string{"name", "status"},
			},
			{
				Name: "logs",
				Columns: []schema.Column{
					{Name: "message", Type: "text", Nullable: true},
				},
			},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(testSchema()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"DATABASE shop\n",
		"TABLE users (PK: id)\n",
		"  id: int(11) NOT NULL AUTO_INCREMENT\n",
		"  name: varchar(255) NOT NULL *\n",
		"  status: varchar(16) NOT NULL DEFAULT active *\n",
		"  email: text\n",
		"  REQUIRED: name, status\n",
		"TABLE logs\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format(testSchema()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Database Schema: shop\n",
		"## users\n",
		"- **id:** int(11), PK, NOT NULL, AUTO_INCREMENT\n",
		"- **status:** varchar(16), NOT NULL, DEFAULT active\n",
		"- **email:** text\n",
		"### Required on insert\n\n- name\n- status\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMultiFileFormatter(t *testing.T) {
	tests := []struct {
		format    string
		files     []string
		overview  string
		tableLine string
	}{
		{"markdown", []string{"_overview.md", "users.md", "logs.md"}, "- **users** (key: id)", "## users"},
		{"text", []string{"_overview.txt", "users.txt", "logs.txt"}, "users (key: id)", "TABLE users (PK: id)"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "schema")
			if err := NewMultiFileFormatter(dir, tt.format).Format(testSchema()); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			for _, name := range tt.files {
				if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
					t.Errorf("missing file %s: %v", name, err)
				}
			}

			overview, _ := os.ReadFile(filepath.Join(dir, tt.files[0]))
			if !strings.Contains(string(overview), tt.overview) {
				t.Errorf("overview missing %q\n%s", tt.overview, overview)
			}
			users, _ := os.ReadFile(filepath.Join(dir, tt.files[1]))
			if !strings.Contains(string(users), tt.tableLine) {
				t.Errorf("table file missing %q\n%s", tt.tableLine, users)
			}
		})
	}
}

func TestMultiFileFormatterInvalidFormat(t *testing.T) {
	if err := NewMultiFileFormatter(t.TempDir(), "html").Format(testSchema()); err == nil {
		t.Error("Format() expected error for invalid format, got nil")
	}
}

func TestRowWriter(t *testing.T) {
	columns := []string{"id", "name", "email"}
	rows := []map[string]any{
		{"id": int64(1), "name": "Ann", "email": nil},
		{"id": int64(2), "name": "Bob", "email": []byte("bob@example.com")},
	}

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"id  name  email", "1   Ann   NULL", "2   Bob   bob@example.com", "(2 rows)"}},
		{"json", []string{`"name": "Ann"`, `"email": null`, `"email": "bob@example.com"`}},
		{"yaml", []string{"- id: 1\n  name: Ann\n  email: null\n", "- id: 2\n  name: Bob\n  email: bob@example.com\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewRowWriter(&buf, tt.format)
			if err != nil {
				t.Fatalf("NewRowWriter() error = %v", err)
			}
			if err := w.Write(columns, rows); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRowWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewRowWriter(&buf, "json")
	if err := w.Write(nil, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Write() = %s, want []", got)
	}

	if _, err := NewRowWriter(&buf, "xml"); err == nil {
		t.Error("NewRowWriter(xml) expected error, got nil")
	}
}
