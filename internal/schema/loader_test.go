package schema

import "testing"

func strPtr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	rows := []ColumnRow{
		{Field: "id", Type: "int(11) unsigned", Null: "NO", Key: "PRI", Extra: "auto_increment"},
		{Field: "name", Type: "varchar(255)", Null: "NO"},
		{Field: "email", Type: "varchar(255)", Null: "YES", Key: "UNI"},
		{Field: "status", Type: "varchar(16)", Null: "No", Default: strPtr("active")},
	}

	info := Load(rows)

	wantFields := []string{"id", "name", "email", "status"}
	if len(info.FieldNames) != len(wantFields) {
		t.Fatalf("Load() FieldNames = %v, want %v", info.FieldNames, wantFields)
	}
	for i, f := range wantFields {
		if info.FieldNames[i] != f {
			t.Errorf("Load() FieldNames[%d] = %s, want %s", i, info.FieldNames[i], f)
		}
	}

	if len(info.PrimaryKeys) != 1 || info.PrimaryKeys[0] != "id" {
		t.Errorf("Load() PrimaryKeys = %v, want [id]", info.PrimaryKeys)
	}

	wantRequired := []string{"name", "status"}
	if len(info.RequiredFields) != len(wantRequired) {
		t.Fatalf("Load() RequiredFields = %v, want %v", info.RequiredFields, wantRequired)
	}
	for i, f := range wantRequired {
		if info.RequiredFields[i] != f {
			t.Errorf("Load() RequiredFields[%d] = %s, want %s", i, info.RequiredFields[i], f)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	info := Load(nil)
	if len(info.Columns) != 0 || len(info.FieldNames) != 0 || len(info.PrimaryKeys) != 0 || len(info.RequiredFields) != 0 {
		t.Errorf("Load(nil) = %+v, want empty", info)
	}
}

func TestColumnRequired(t *testing.T) {
	tests := []struct {
		name string
		row  ColumnRow
		want bool
	}{
		{
			name: "nullable column",
			row:  ColumnRow{Field: "bio", Type: "text", Null: "YES"},
			want: false,
		},
		{
			name: "not null without default",
			row:  ColumnRow{Field: "name", Type: "varchar(255)", Null: "NO"},
			want: true,
		},
		{
			name: "not null with default",
			row:  ColumnRow{Field: "status", Type: "varchar(16)", Null: "NO", Default: strPtr("new")},
			want: true,
		},
		{
			name: "not null auto increment without default",
			row:  ColumnRow{Field: "id", Type: "int(11)", Null: "NO", Key: "PRI", Extra: "auto_increment"},
			want: false,
		},
		{
			// pinned: an auto-increment column that reports a default is still required
			name: "not null auto increment with default",
			row:  ColumnRow{Field: "id", Type: "int(11)", Null: "NO", Key: "PRI", Default: strPtr("1"), Extra: "auto_increment"},
			want: true,
		},
		{
			name: "empty default counts as absent",
			row:  ColumnRow{Field: "id", Type: "int(11)", Null: "NO", Default: strPtr(""), Extra: "auto_increment"},
			want: false,
		},
		{
			name: "zero default counts as absent",
			row:  ColumnRow{Field: "id", Type: "int(11)", Null: "NO", Default: strPtr("0"), Extra: "auto_increment"},
			want: false,
		},
		{
			name: "zero default on plain column",
			row:  ColumnRow{Field: "count", Type: "int(11)", Null: "NO", Default: strPtr("0")},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseColumn(tt.row).Required(); got != tt.want {
				t.Errorf("Required() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColumn(t *testing.T) {
	col := ParseColumn(ColumnRow{Field: "id", Type: "bigint unsigned", Null: "false", Key: "pri", Extra: "auto_increment on update"})

	if col.Nullable {
		t.Error("ParseColumn() Nullable = true, want false")
	}
	if !col.IsPrimary() {
		t.Error("ParseColumn() IsPrimary = false, want true")
	}
	if !col.AutoGenerated {
		t.Error("ParseColumn() AutoGenerated = false, want true")
	}
	if got := col.TypeKeyword(); got != "bigint" {
		t.Errorf("TypeKeyword() = %s, want bigint", got)
	}
}
