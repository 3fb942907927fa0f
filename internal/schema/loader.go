package schema

import "strings"

// Info holds a table's columns and the sequences derived from them
type Info struct {
	Columns        []Column
	FieldNames     []string
	PrimaryKeys    []string
	RequiredFields []string
}

// Load builds Info from raw column metadata rows.
// An empty input yields an empty Info.
func Load(rows []ColumnRow) Info {
	var info Info
	for _, r := range rows {
		col := ParseColumn(r)
		info.Columns = append(info.Columns, col)
		info.FieldNames = append(info.FieldNames, col.Name)

		if col.IsPrimary() {
			info.PrimaryKeys = append(info.PrimaryKeys, col.Name)
		}
		if col.Required() {
			info.RequiredFields = append(info.RequiredFields, col.Name)
		}
	}
	return info
}

// ParseColumn converts one raw metadata row into a Column
func ParseColumn(r ColumnRow) Column {
	return Column{
		Name:          r.Field,
		Type:          r.Type,
		Nullable:      !isNo(r.Null),
		Key:           parseKey(r.Key),
		Default:       r.Default,
		AutoGenerated: isAutoIncrement(r.Extra),
	}
}

func isNo(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "false", "0":
		return true
	}
	return false
}

func parseKey(v string) KeyRole {
	if strings.EqualFold(strings.TrimSpace(v), "PRI") {
		return KeyPrimary
	}
	return KeyNone
}

func isAutoIncrement(extra string) bool {
	for _, f := range strings.Fields(strings.ToLower(extra)) {
		if f == "auto_increment" {
			return true
		}
	}
	return false
}
