package checks

import (
	"fmt"
	"reflect"
	"strings"

	"auto-validator/core/database"
	"auto-validator/feature/validators/models"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing one schema's tables with its GORM models.
type SchemaReport struct {
	Schema  string                 `json:"schema"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
	// Rows counts the rows per table. Only set when every table matched.
	Rows map[string]int64 `json:"rows,omitempty"`
	// SeveralDefaults names validators with more than one default hotkey.
	SeveralDefaults []string `json:"several_defaults,omitempty"`
}

type TableReport struct {
	MissingTable   bool     `json:"missing_table"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies the tables of schema using its GORM models as the source of truth.
func CheckSchema(db *gorm.DB, schema models.Schema) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Schema:  schema.Name,
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	for _, model := range schema.Models() {
		tabler, ok := model.(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}
		if len(actualCols) == 0 {
			tbl.MissingTable = true
			tbl.Status = "error"
			report.Matched = false
			report.Tables[tableName] = tbl
			continue
		}

		actualMap := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		for _, field := range modelFields(reflect.TypeOf(model)) {
			gormTag := field.Tag.Get("gorm")
			colName := parseGormColumn(gormTag)
			if colName == "" {
				continue
			}

			actCol, exists := actualMap[colName]
			if !exists {
				tbl.MissingColumns = append(tbl.MissingColumns, colName)
				tbl.Status = "error"
				report.Matched = false
				continue
			}

			// Only columns with an explicit type: tag are type checked
			expType := strings.ToLower(parseGormType(gormTag))
			if expType != "" && !strings.Contains(actCol.Type, expType) {
				mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
				tbl.TypeMismatches = append(tbl.TypeMismatches, mismatch)
				tbl.Status = "error"
				report.Matched = false
			}
		}

		report.Tables[tableName] = tbl
	}

	return report, nil
}

// modelFields flattens embedded structs so the manager models report their columns.
func modelFields(t reflect.Type) []reflect.StructField {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			fields = append(fields, modelFields(field.Type)...)
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
