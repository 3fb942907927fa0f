package schema

import "strings"

// KeyRole describes the part a column plays in the table's keys
type KeyRole int

const (
	KeyNone KeyRole = iota
	KeyPrimary
)

// String returns the SHOW COLUMNS spelling of the role
func (k KeyRole) String() string {
	if k == KeyPrimary {
		return "PRI"
	}
	return ""
}

// ColumnRow is one raw row of column metadata as reported by a connection.
// The field names follow MySQL's SHOW COLUMNS output.
type ColumnRow struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// Column represents a table column
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	Key           KeyRole
	Default       *string
	AutoGenerated bool
}

// TypeKeyword returns the declared type up to the first space,
// e.g. "int(11)" for "int(11) unsigned".
func (c Column) TypeKeyword() string {
	if i := strings.IndexByte(c.Type, ' '); i >= 0 {
		return c.Type[:i]
	}
	return c.Type
}

// HasDefault reports whether the column carries a default that counts as
// set. Like a loose truthiness check, "" and "0" count as no default.
func (c Column) HasDefault() bool {
	return c.Default != nil && *c.Default != "" && *c.Default != "0"
}

// IsPrimary reports whether the column is part of the primary key
func (c Column) IsPrimary() bool {
	return c.Key == KeyPrimary
}

// Required reports whether an insert must supply the column.
//
// A NOT NULL column is required when it has a default or is not
// auto-generated. This keeps the historical rule as is: a NOT NULL
// auto-increment column without a default is still not required, while
// one that reports a default is.
func (c Column) Required() bool {
	if c.Nullable {
		return false
	}
	return c.HasDefault() || !c.AutoGenerated
}

// Schema represents the reflected schema of a database
type Schema struct {
	Database string
	Tables   []Table
}

// Table represents the reflected schema of one table
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Required   []string
}
