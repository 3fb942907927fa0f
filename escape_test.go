package mydb

import (
	"math"
	"testing"
	"time"

	"github.com/thapedict/mydb/internal/schema"
)

func TestEscapeValue(t *testing.T) {
	conn := newFakeConn()

	tests := []struct {
		name    string
		colType string
		value   any
		want    string
	}{
		{"int from int", "int(11)", 42, "42"},
		{"int from string", "int(11)", "42", "42"},
		{"int from numeric prefix", "int(11)", "12abc", "12"},
		{"int from garbage", "int(11)", "abc", "0"},
		{"int truncates float", "int(11)", 3.9, "3"},
		{"int truncates negative float", "int(11)", -3.9, "-3"},
		{"int from float string", "int(11)", "1e3", "1000"},
		{"int from nil", "int(11)", nil, "0"},
		{"int from bool", "tinyint(1)", true, "1"},
		{"bigint unsigned", "bigint(20) unsigned", uint64(7), "7"},
		{"int with injection", "int(11)", "1; DROP TABLE users", "1"},
		{"uppercase INT passes through", "INT", "1; DROP TABLE users", "1; DROP TABLE users"},
		{"uppercase INT nil", "INT", nil, "NULL"},
		{"varchar quoted", "varchar(255)", "Ann", "'Ann'"},
		{"varchar escapes quote", "varchar(255)", "O'Brien", `'O\'Brien'`},
		{"varchar from int", "varchar(255)", 5, "'5'"},
		{"varchar from nil", "varchar(255)", nil, "''"},
		{"TEXT uppercase", "TEXT", "x", "'x'"},
		{"mediumblob", "mediumblob", []byte("raw"), "'raw'"},
		{"datetime string", "datetime", "2024-01-02 03:04:05", "'2024-01-02 03:04:05'"},
		{"datetime from time", "datetime", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "'2024-01-02 03:04:05'"},
		{"date", "date", "2024-01-02", "'2024-01-02'"},
		{"timestamp", "timestamp", "now", "'now'"},
		{"year", "year(4)", 2024, "'2024'"},
		{"double", "double", "3.5", "3.5"},
		{"float with precision", "float(8,2)", 2.25, "2.25"},
		{"double from garbage", "double", "abc", "0"},
		{"double from int", "double", 4, "4"},
		{"double NaN", "double", math.NaN(), "0"},
		{"decimal passes through", "decimal(10,2)", "9.99", "9.99"},
		{"enum passes through", "enum('a','b')", "'a'", "'a'"},
		{"json nil", "json", nil, "NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := schema.Column{Name: "c", Type: tt.colType}
			if got := escapeValue(conn, col, tt.value); got != tt.want {
				t.Errorf("escapeValue(%s, %v) = %s, want %s", tt.colType, tt.value, got, tt.want)
			}
		})
	}
}

func TestNumericPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"  42abc", "42"},
		{"-7", "-7"},
		{"+7", "+7"},
		{"3.14xyz", "3.14"},
		{".5", ".5"},
		{"12.", "12."},
		{"1e5", "1e5"},
		{"1e", "1"},
		{"abc", ""},
		{"-", ""},
		{".", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := numericPrefix(tt.in); got != tt.want {
				t.Errorf("numericPrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"true", true, "1"},
		{"false", false, ""},
		{"int64", int64(-3), "-3"},
		{"float", 1.5, "1.5"},
		{"bytes", []byte("b"), "b"},
		{"duration stringer", 2 * time.Second, "2s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toString(tt.in); got != tt.want {
				t.Errorf("toString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
