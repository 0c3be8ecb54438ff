package models

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"sort"
	"strings"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Query generation and column report.

`mycms generate` migrates the schema, prints a report of database columns that
have no matching field in the Go models, and writes type-safe query helpers for
BlogPost and User to the output directory (default ./generated).

`mycms generate --report-only` prints the report without migrating or
generating anything. Example output:

	=== COLUMN MISMATCH REPORT ===
	--- Table: blog_posts ---
	All columns are accounted for in the model.
	--- Table: users ---
	Found 1 columns not accounted for in model:
	  - last_login
	=== SUMMARY ===
	Total mismatched columns across all tables: 1
*/

// All returns every persisted model, in migration order
func All() []any {
	return []any{&User{}, &BlogPost{}}
}

// tableModels maps table names to their model structs for the column report
func tableModels() map[string]any {
	return map[string]any{
		User{}.TableName():     User{},
		BlogPost{}.TableName(): BlogPost{},
	}
}

// GenerateModels migrates the schema and writes gorm/gen query code to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	migrateDB := db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	if _, err := GenerateColumnMismatchReport(db, os.Stdout); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(User{}, BlogPost{})
	g.Execute()

	return nil
}

// GenerateColumnMismatchReport prints, per table, the database columns that no
// model field maps to. It returns the total number of unmapped columns.
func GenerateColumnMismatchReport(db *gorm.DB, out io.Writer) (int, error) {
	fmt.Fprintln(out, "=== COLUMN MISMATCH REPORT ===")

	mappings := tableModels()
	tables := make([]string, 0, len(mappings))
	for table := range mappings {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	total := 0
	for _, table := range tables {
		fmt.Fprintf(out, "--- Table: %s ---\n", table)

		if !db.Migrator().HasTable(table) {
			fmt.Fprintln(out, "Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			return total, fmt.Errorf("read columns of %s: %w", table, err)
		}
		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		missing := findColumnMismatches(dbColumns, modelColumns(mappings[table]))
		if len(missing) == 0 {
			fmt.Fprintln(out, "All columns are accounted for in the model.")
			continue
		}
		fmt.Fprintf(out, "Found %d columns not accounted for in model:\n", len(missing))
		for _, col := range missing {
			fmt.Fprintf(out, "  - %s\n", col)
		}
		total += len(missing)
	}

	fmt.Fprintln(out, "=== SUMMARY ===")
	fmt.Fprintf(out, "Total mismatched columns across all tables: %d\n", total)
	return total, nil
}

// modelColumns lists the column names declared in a model's gorm tags
func modelColumns(model any) []string {
	var columns []string
	t := reflect.TypeOf(model)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		if column := columnFromGormTag(field.Tag.Get("gorm")); column != "" {
			columns = append(columns, column)
		}
	}
	return columns
}

func columnFromGormTag(tag string) string {
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	return ""
}

func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]bool, len(modelFields))
	for _, f := range modelFields {
		known[f] = true
	}

	var missing []string
	for _, col := range dbColumns {
		if !known[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
