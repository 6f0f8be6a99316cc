package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// Field and Type are lower-cased. A missing table yields no columns on sqlite.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if IsSQLite(db) {
		type sqliteColumn struct {
			Cid       int
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		var rows []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range rows {
			null := "YES"
			if col.Notnull == 1 {
				null = "NO"
			}
			key := ""
			if col.Pk > 0 {
				key = "PRI"
			}
			columns = append(columns, ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Null:    null,
				Key:     key,
				Default: col.DfltValue,
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// SchemaIssue describes a table that is missing or lacks expected columns.
type SchemaIssue struct {
	Table          string   `json:"table"`
	MissingTable   bool     `json:"missing_table"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

func (i SchemaIssue) String() string {
	if i.MissingTable {
		return fmt.Sprintf("table %s is missing", i.Table)
	}
	return fmt.Sprintf("table %s is missing columns: %s", i.Table, strings.Join(i.MissingColumns, ", "))
}

// VerifyTables checks that every table in expected exists with the listed columns.
// Issues are returned sorted by table name.
func VerifyTables(db *gorm.DB, expected map[string][]string) ([]SchemaIssue, error) {
	tables := make([]string, 0, len(expected))
	for table := range expected {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var issues []SchemaIssue
	for _, table := range tables {
		columns, err := GetTableColumns(db, table)
		if err != nil {
			if !IsSQLite(db) && !db.Migrator().HasTable(table) {
				issues = append(issues, SchemaIssue{Table: table, MissingTable: true})
				continue
			}
			return nil, err
		}
		if len(columns) == 0 {
			issues = append(issues, SchemaIssue{Table: table, MissingTable: true})
			continue
		}

		present := make(map[string]struct{}, len(columns))
		for _, c := range columns {
			present[c.Field] = struct{}{}
		}
		var missing []string
		for _, want := range expected[table] {
			if _, ok := present[strings.ToLower(want)]; !ok {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, SchemaIssue{Table: table, MissingColumns: missing})
		}
	}
	return issues, nil
}
