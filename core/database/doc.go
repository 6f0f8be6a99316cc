// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either a MySQL connection or a SQLite
// database (file or in-memory) from the application's configuration.
//
// # Connect
//
// Connect opens the database with translated errors enabled, so duplicate
// keys surface as gorm.ErrDuplicatedKey and foreign key failures as
// gorm.ErrForeignKeyViolated. SQLite connections are limited to a single
// connection with foreign keys enforced.
//
// # Schema Inspection
//
// GetTableColumns and VerifyTables compare the live schema against the tables
// a feature expects. The migrate command uses them to report drift.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	issues, err := database.VerifyTables(db, map[string][]string{
//	    "core_validator": {"id", "short_name", "long_name", "last_stake"},
//	})
package database
